package cache

// Cache keys. Writers delete the key they invalidate; readers repopulate it.
const (
	KeyCategories = "catalog:categories"
	KeyDashboard  = "analytics:dashboard"
)
