package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to user-facing messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token blacklisted
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access to resource
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"  // no permission for action
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // role missing from context
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admin only
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"     // owner only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Businesses (BUSINESS_) ====================
	BusinessNotFound             = "BUSINESS_NOT_FOUND"
	BusinessAlreadyRegistered    = "BUSINESS_ALREADY_REGISTERED"     // registration number taken
	BusinessNotInvestable        = "BUSINESS_NOT_INVESTABLE"         // below partnership-ready threshold
	BusinessProfileIncomplete    = "BUSINESS_PROFILE_INCOMPLETE"     // required sections missing
	BusinessOwnerAccountRequired = "BUSINESS_OWNER_ACCOUNT_REQUIRED" // caller has no business role

	// ==================== Documents (DOCUMENT_) ====================
	DocumentNotFound        = "DOCUMENT_NOT_FOUND"
	DocumentNotPending      = "DOCUMENT_NOT_PENDING"     // already reviewed
	DocumentReasonRequired  = "DOCUMENT_REASON_REQUIRED" // rejection reason missing
	DocumentUnknownType     = "DOCUMENT_UNKNOWN_TYPE"    // type not in catalog
	DocumentAlreadyVerified = "DOCUMENT_ALREADY_VERIFIED"

	// ==================== Connections (CONNECTION_) ====================
	ConnectionNotFound       = "CONNECTION_NOT_FOUND"
	ConnectionNotLead        = "CONNECTION_NOT_LEAD"         // transition only valid from lead
	ConnectionSelfNotAllowed = "CONNECTION_SELF_NOT_ALLOWED" // cannot connect to own business
	ConnectionClosed         = "CONNECTION_CLOSED"           // terminal state reached

	// ==================== Conversations (CONVERSATION_) ====================
	ConversationNotFound  = "CONVERSATION_NOT_FOUND"
	ConversationNotMember = "CONVERSATION_NOT_MEMBER"
	MessageNotFound       = "MESSAGE_NOT_FOUND"

	// ==================== Milestones (MILESTONE_) ====================
	MilestoneNotFound        = "MILESTONE_NOT_FOUND"
	MilestoneInvalidState    = "MILESTONE_INVALID_STATE"
	MilestoneNotCounterparty = "MILESTONE_NOT_COUNTERPARTY" // proposer cannot agree to own proposal
	ExtensionNotFound        = "EXTENSION_NOT_FOUND"
	ExtensionInvalidState    = "EXTENSION_INVALID_STATE"

	// ==================== Matches (MATCH_) ====================
	MatchNotFound = "MATCH_NOT_FOUND"

	// ==================== Notifications (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
