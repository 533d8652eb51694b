package models

// ProductPatch lists the product fields to change. Nil fields are left untouched.
type ProductPatch struct {
	Name             *string
	Description      *string
	ParentCategoryID *string
	SubCategoryID    *string
	BrandID          *string
	Details          []DetailPatch
}

// DetailPatch updates one existing ProductDetail of the patched product.
type DetailPatch struct {
	ID       string
	Price    *float64
	Discount *float64
	Size     *string
	Color    *string
	Quantity *int
}

// AddressPatch lists the address fields to change.
type AddressPatch struct {
	Address     *string
	StreetName  *string
	Landmark    *string
	Locality    *string
	Pincode     *int
	City        *string
	State       *string
	AddressType *bool
}

// UserPatch lists the profile fields to change.
type UserPatch struct {
	Name  *Name
	Phone *string
}
