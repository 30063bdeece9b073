package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps these to
// user-facing copy; the message field is a Spanish default.

const (
	// ==================== auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== authz (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== catalog (PRODUCT_) ====================
	ProductNotFound        = "PRODUCT_NOT_FOUND"
	VariantNotFound        = "VARIANT_NOT_FOUND"
	ProductInvalidSize     = "PRODUCT_INVALID_SIZE"
	ProductInvalidColor    = "PRODUCT_INVALID_COLOR"
	ProductOutOfStock      = "PRODUCT_OUT_OF_STOCK"
	ProductStockConflict   = "PRODUCT_STOCK_CONFLICT"
	ProductInvalidCatalog  = "PRODUCT_INVALID_CATALOG"

	// ==================== cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartEmpty           = "CART_EMPTY"
	CartInvalidCookie   = "CART_INVALID_COOKIE"
	CartQuantityClamped = "CART_QUANTITY_CLAMPED"

	// ==================== review (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewDuplicate     = "REVIEW_DUPLICATE"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewForbidden     = "REVIEW_FORBIDDEN"
	ReviewInvalidStatus = "REVIEW_INVALID_STATUS"

	// ==================== order (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"
	OrderAlreadyTerminal   = "ORDER_ALREADY_TERMINAL"

	// ==================== payment (PAYMENT_) ====================
	PaymentNotFound         = "PAYMENT_NOT_FOUND"
	PaymentProviderError    = "PAYMENT_PROVIDER_ERROR"
	PaymentInvalidProvider  = "PAYMENT_INVALID_PROVIDER"
	PaymentAlreadyProcessed = "PAYMENT_ALREADY_PROCESSED"

	// ==================== internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
