package httppresentation

import (
	"time"

	domcatalog "github.com/mathieu6700417/conciergeriecordo/internal/domain/catalog"
	domorder "github.com/mathieu6700417/conciergeriecordo/internal/domain/order"
)

type serviceResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	ShoeType      string `json:"shoe_type"`
	Description   string `json:"description,omitempty"`
	ImageFilename string `json:"image_filename,omitempty"`
}

type listServicesResponse struct {
	Services []serviceResponse `json:"services"`
}

func toServiceResponses(svcs []domcatalog.Service) []serviceResponse {
	out := make([]serviceResponse, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, serviceResponse{
			ID:            s.ID,
			Name:          s.Name,
			Price:         s.Price.StringFixed(2),
			ShoeType:      string(s.ShoeType),
			Description:   s.Description,
			ImageFilename: s.ImageFilename,
		})
	}
	return out
}

type uploadPhotoRequest struct {
	// Photo is base64, optionally as a data URL.
	Photo string `json:"photo"`
}

type uploadPhotoResponse struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	TempID string `json:"temp_id"`
}

type customerPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type pairPayload struct {
	ShoeType    string   `json:"shoe_type"`
	ServiceIDs  []string `json:"service_ids"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	PhotoPath   string   `json:"photo_path,omitempty"`
	Description string   `json:"description,omitempty"`
}

type createOrderRequest struct {
	Customer customerPayload `json:"customer"`
	Pairs    []pairPayload   `json:"pairs"`
}

type lineResponse struct {
	ID          string `json:"id"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	UnitPrice   string `json:"unit_price"`
}

type pairResponse struct {
	ID          string         `json:"id"`
	Position    int            `json:"position"`
	ShoeType    string         `json:"shoe_type"`
	PhotoURL    string         `json:"photo_url,omitempty"`
	PhotoPath   string         `json:"photo_path,omitempty"`
	Description string         `json:"description,omitempty"`
	Subtotal    string         `json:"subtotal"`
	Lines       []lineResponse `json:"lines"`
}

type orderResponse struct {
	ID         string          `json:"id"`
	Status     domorder.Status `json:"status"`
	Total      string          `json:"total"`
	Customer   customerPayload `json:"customer"`
	PaymentRef string          `json:"payment_ref,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Pairs      []pairResponse  `json:"pairs"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	resp := orderResponse{
		ID:     o.ID,
		Status: o.Status,
		Total:  o.Total.StringFixed(2),
		Customer: customerPayload{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Company: o.Customer.Company,
		},
		PaymentRef: o.PaymentRef,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Pairs:      make([]pairResponse, 0, len(o.Pairs)),
	}
	for _, p := range o.Pairs {
		pr := pairResponse{
			ID:          p.ID,
			Position:    p.Position,
			ShoeType:    string(p.ShoeType),
			PhotoURL:    p.Photo.URL,
			PhotoPath:   p.Photo.Path,
			Description: p.Description,
			Subtotal:    p.Subtotal().StringFixed(2),
			Lines:       make([]lineResponse, 0, len(p.Lines)),
		}
		for _, l := range p.Lines {
			pr.Lines = append(pr.Lines, lineResponse{
				ID:          l.ID,
				ServiceID:   l.ServiceID,
				ServiceName: l.ServiceName,
				UnitPrice:   l.UnitPrice.StringFixed(2),
			})
		}
		resp.Pairs = append(resp.Pairs, pr)
	}
	return resp
}

type checkoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type webhookResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
}
