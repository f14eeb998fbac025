package models

// Stored user roles. An empty role is an ordinary buyer.
const (
	RoleNone   = ""
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Document field names the authorization layer and queries depend on.
// Everything else in a stored document is opaque to the server.
const (
	FieldID              = "_id"
	FieldEmail           = "email"
	FieldRole            = "role"
	FieldProductID       = "productId"
	FieldProductCategory = "productCategory"
	FieldStatus          = "status"
	FieldAdvertised      = "advertised"
	FieldSellerEmail     = "seller.email"
)

// Collection names in the document database.
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionWishlist = "wishlist"
	CollectionReports  = "reports"
	CollectionBookings = "bookings"
)
