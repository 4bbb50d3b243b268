package observability

// Instruments known to the provider. Labels are listed next to each key;
// adapters must register them with exactly these label names.
const (
	// use_case, outcome
	MUsecaseRequests MetricKey = "usecase_requests_total"
	// use_case
	MUsecaseDuration MetricKey = "usecase_duration_seconds"

	// method, route, status
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"

	// peer, endpoint, outcome (duration: peer, endpoint)
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"

	// kind, outcome
	MNotificationsSent MetricKey = "notifications_total"
	// kind, result
	MPaymentEvents MetricKey = "payment_events_total"
	// shoe_types; observed in currency units
	MOrderTotal MetricKey = "order_total_amount"
)
