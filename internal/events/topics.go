package events

// Topic constants for domain events.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicProductRestocked   = "product.restocked"
)

// DefaultTopics returns every topic the service emits.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderStatusChanged,
		TopicProductRestocked,
	}
}
