package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; the frontend maps these to messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized  = "AUTH_UNAUTHORIZED"   // login required
	AuthTokenExpired  = "AUTH_TOKEN_EXPIRED"  // session token expired
	AuthTokenInvalid  = "AUTH_TOKEN_INVALID"  // malformed/forged token
	AuthTokenRevoked  = "AUTH_TOKEN_REVOKED"  // token blacklisted on logout
	AuthLinkInvalid   = "AUTH_LINK_INVALID"   // unknown or consumed magic link
	AuthLinkExpired   = "AUTH_LINK_EXPIRED"   // magic link past its TTL

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // no access to resource
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // admin flag required

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed payload
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // unparseable id
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // out-of-domain value
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing required field

	// ==================== Catalog (ITEM_) ====================
	ItemNotFound      = "ITEM_NOT_FOUND"
	ItemInvalidSize   = "ITEM_INVALID_SIZE"   // size not declared by the item
	ItemInUse         = "ITEM_IN_USE"         // referenced by order lines
	ItemOrderConflict = "ITEM_ORDER_CONFLICT" // stale display position

	// ==================== Cart / Orders (ORDER_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"
	OrderItemNotFound     = "ORDER_ITEM_NOT_FOUND"
	OrderCartEmpty        = "ORDER_CART_EMPTY"
	OrderNotEditable      = "ORDER_NOT_EDITABLE"      // line mutation after submission
	OrderAlreadySubmitted = "ORDER_ALREADY_SUBMITTED" // double submission
	OrderInvalidStatus    = "ORDER_INVALID_STATUS"    // status outside the enum

	// ==================== Players (PLAYER_) ====================
	PlayerNotFound   = "PLAYER_NOT_FOUND"
	PlayerLinkFailed = "PLAYER_LINK_FAILED" // created but not linked

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
)
