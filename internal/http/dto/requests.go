package dto

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Country      *string `json:"country,omitempty"`
	PinCode      *string `json:"pin_code,omitempty"`
}

// Prices travel as strings to keep exact decimal values intact.
type ProductRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Price           string  `json:"price"`
	Currency        string  `json:"currency,omitempty"`
	Condition       string  `json:"condition,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	MinOfferPrice   string  `json:"min_offer_price,omitempty"`
	LocationCity    string  `json:"location_city,omitempty"`
	LocationState   string  `json:"location_state,omitempty"`
	LocationCountry string  `json:"location_country,omitempty"`
	CategoryID      *string `json:"category_id,omitempty"`
}

type AddImageRequest struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
}

type CreateCategoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
}

type CreateBlockRequest struct {
	BlockedUserID string `json:"blocked_user_id"`
}

type WishlistAddRequest struct {
	ProductID string `json:"product_id"`
}

type StartNegotiationRequest struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Message   string `json:"message,omitempty"`
}

type OfferRequest struct {
	Price   string `json:"price"`
	Message string `json:"message,omitempty"`
}

type UpdateDealStatusRequest struct {
	Status string `json:"status"`
}
