package entity

type KYCStatus string

const (
	KYCStatusUnverified KYCStatus = "UNVERIFIED"
	KYCStatusPending    KYCStatus = "PENDING"
	KYCStatusApproved   KYCStatus = "APPROVED"
)

type UserProfile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	KYCStatus        KYCStatus `json:"kyc_status"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
}
