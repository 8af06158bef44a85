package domain

import "strings"

type KycStatus string

const (
	KycPending    KycStatus = "Pending"
	KycProcessing KycStatus = "Processing"
	KycApproved   KycStatus = "Approved"
	KycRejected   KycStatus = "Rejected"
)

// ParseKycStatus is case-insensitive; unknown or empty values read as Pending.
func ParseKycStatus(s string) KycStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "processing":
		return KycProcessing
	case "approved", "verified":
		return KycApproved
	case "rejected":
		return KycRejected
	}
	return KycPending
}

func (s KycStatus) Terminal() bool { return s == KycApproved || s == KycRejected }

type KycDocuments struct {
	Front        string `json:"front"`
	Back         string `json:"back"`
	DocumentType string `json:"documentType"`
	Country      string `json:"country"`
}

// KycRequest is the vendor record as returned by the KYC listing.
type KycRequest struct {
	Vendor
}

func (k KycRequest) Status() KycStatus {
	return ParseKycStatus(firstNonEmpty(k.KycStatus, k.VerificationStatus))
}

func (k KycRequest) Documents() KycDocuments {
	if k.KycDocuments == nil {
		return KycDocuments{}
	}
	return *k.KycDocuments
}

func (k KycRequest) SubmittedAt() Timestamp {
	if !k.KycSubmittedAt.IsZero() {
		return k.KycSubmittedAt
	}
	return k.CreatedAt
}
