package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService         AuthService
	PropertyService     PropertyService
	AlertService        AlertService
	ProfileService      ProfileService
	NotificationService NotificationService
}
