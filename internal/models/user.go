package models

// Role controls access to catalog management endpoints.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Name is stored inline on the users table.
type Name struct {
	FirstName  string `json:"first_name" gorm:"type:varchar(50)" validate:"required,min=2,max=10"`
	MiddleName string `json:"middle_name,omitempty" gorm:"type:varchar(50)" validate:"omitempty,min=2,max=10"`
	LastName   string `json:"last_name" gorm:"type:varchar(50)" validate:"required,min=2,max=10"`
}

// FullName joins the name parts the way mail templates expect them.
func (n Name) FullName() string {
	full := n.FirstName
	if n.MiddleName != "" {
		full += " " + n.MiddleName
	}
	return full + " " + n.LastName
}

// User represents a customer or staff account.
type User struct {
	Base
	Email      string             `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Hash       string             `json:"-" gorm:"type:varchar(255);not null"`
	Name       Name               `json:"name" gorm:"embedded;embeddedPrefix:name_"`
	Phone      *string            `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Role       Role               `json:"role" gorm:"type:varchar(10);not null;default:USER"`
	IsVerified bool               `json:"is_verified" gorm:"not null;default:false"`
	Addresses  []Address          `json:"address,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token      *VerificationToken `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// VerificationToken holds the pending six digit code of a user.
// A user has at most one pending code.
type VerificationToken struct {
	Base
	UserID string `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	Code   string `json:"-" gorm:"type:varchar(6);uniqueIndex;not null"`
	User   *User  `json:"-" gorm:"foreignKey:UserID"`
}

// Address is a shipping address owned by a user.
type Address struct {
	Base
	UserID      string `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Address     string `json:"address" gorm:"type:varchar(255);not null"`
	StreetName  string `json:"street_name" gorm:"type:varchar(255);not null"`
	Landmark    string `json:"landmark" gorm:"type:varchar(255)"`
	Locality    string `json:"locality" gorm:"type:varchar(255)"`
	Pincode     int    `json:"pincode" gorm:"not null"`
	City        string `json:"city" gorm:"type:varchar(100);not null"`
	State       string `json:"state" gorm:"type:varchar(100);not null"`
	AddressType bool   `json:"address_type"`
}
