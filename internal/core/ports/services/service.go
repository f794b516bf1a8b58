package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers and the CLI.
type ServiceContainer struct {
	Validator     RowValidator
	Preview       PreviewGenerator
	Poster        PaymentPoster
	Rollback      RollbackSvc
	ErrorHandler  ErrorHandlerSvc
	Consistency   ConsistencySvc
	Audit         AuditSvc
	Batch         BatchProcessorSvc
	ManualPayment ManualPaymentSvc
	Template      TemplateSvc
	Sessions      SessionRegistrySvc
	Members       MemberRegistrySvc
	// BatchOptions are the configured chunking and retry settings, for callers driving a workflow directly.
	BatchOptions  BatchOptions
}
