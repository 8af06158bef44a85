package domain

import (
	"encoding/json"
	"strings"
)

type SubjectType string

const (
	SubjectUser   SubjectType = "user"
	SubjectVendor SubjectType = "vendor"
	SubjectAdmin  SubjectType = "admin"
)

func ParseSubjectType(s string) (SubjectType, bool) {
	switch SubjectType(strings.ToLower(strings.TrimSpace(s))) {
	case SubjectUser:
		return SubjectUser, true
	case SubjectVendor:
		return SubjectVendor, true
	case SubjectAdmin:
		return SubjectAdmin, true
	}
	return "", false
}

type SubjectAction string

const (
	ActionBlock   SubjectAction = "block"
	ActionUnblock SubjectAction = "unblock"
	ActionDelete  SubjectAction = "delete"
)

func ParseSubjectAction(s string) (SubjectAction, bool) {
	switch SubjectAction(strings.ToLower(strings.TrimSpace(s))) {
	case ActionBlock:
		return ActionBlock, true
	case ActionUnblock:
		return ActionUnblock, true
	case ActionDelete:
		return ActionDelete, true
	}
	return "", false
}

type User struct {
	ID          string            `json:"_id"`
	AltID       string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber"`
	Avatar      string            `json:"avatar"`
	IsVerified  bool              `json:"isverified"`
	IsBlocked   bool              `json:"isBlocked"`
	CreatedAt   Timestamp         `json:"createdAt"`
	JoinDate    Timestamp         `json:"joinDate"`
	Orders      []json.RawMessage `json:"orders"`
	Payments    []json.RawMessage `json:"payments"`
}

type BankAccount struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type Vendor struct {
	ID                 string            `json:"_id"`
	AltID              string            `json:"id"`
	Name               string            `json:"name"`
	StoreName          string            `json:"storeName"`
	StoreType          string            `json:"storeType"`
	Email              string            `json:"email"`
	Phone              string            `json:"phone"`
	StorePhone         string            `json:"storePhone"`
	Avatar             string            `json:"avatar"`
	BusinessLogo       string            `json:"businessLogo"`
	KycStatus          string            `json:"kycStatus"`
	VerificationStatus string            `json:"verificationStatus"`
	IsBlocked          bool              `json:"isBlocked"`
	CraftCategories    []string          `json:"craftCategories"`
	KycDocuments       *KycDocuments     `json:"kycDocuments"`
	KycSubmittedAt     Timestamp         `json:"kycSubmittedAt"`
	CreatedAt          Timestamp         `json:"createdAt"`
	BankAccount        *BankAccount      `json:"bankAccount"`
	Orders             []json.RawMessage `json:"orders"`
	Products           []json.RawMessage `json:"products"`
}

type Admin struct {
	ID          string    `json:"_id"`
	AltID       string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Role        string    `json:"role"`
	IsBlocked   bool      `json:"isBlocked"`
	CreatedAt   Timestamp `json:"createdAt"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (u User) Key() string   { return firstNonEmpty(u.ID, u.AltID) }
func (v Vendor) Key() string { return firstNonEmpty(v.ID, v.AltID) }
func (a Admin) Key() string  { return firstNonEmpty(a.ID, a.AltID) }
