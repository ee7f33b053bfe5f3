package enums

const (
	DateLayout = "2006-01-02"

	DefaultImageDescription = "Food from image"

	AuthCookieName = "auth_token"

	// byte ceilings
	MaxUploadBytes       = 5 * 1024 * 1024
	ThumbnailTargetBytes = 100 * 1024
	MaxPreviewBytes      = 500 * 1024

	ActivityFoodAnalyzed = "food.analyzed"
	ActivityMealCreated  = "meal.created"
	ActivityMealDeleted  = "meal.deleted"

	DefaultMealQueue = "meal-events"
)
