package http

// userFacingMessages maps internal error phrasings to the messages shown to
// callers. Unmapped messages pass through unchanged.
var userFacingMessages = map[string]string{
	"Failed to fetch product details": "Unable to retrieve product information",
	"Product not found":               "The requested product could not be found",
	"Invalid product data format":     "Product information is incomplete",
	"Item already exists in wishlist": "This item is already in your wishlist",
	"Wishlist not found":              "Your wishlist could not be found",
	"Item not found in wishlist":      "The item was not found in your wishlist",
	"Product ID is required":          "Please provide a valid product ID",
	"Failed to add item to cart":      "Unable to add item to cart",
}

// translateMessage rewrites an internal error message into its user-facing
// form.
func translateMessage(internal string) string {
	if userFacing, ok := userFacingMessages[internal]; ok {
		return userFacing
	}
	return internal
}
