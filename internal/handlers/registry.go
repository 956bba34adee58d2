package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	PropertyHandler     *PropertyHandler
	AlertHandler        *AlertHandler
	ProfileHandler      *ProfileHandler
	NotificationHandler *NotificationHandler
}
