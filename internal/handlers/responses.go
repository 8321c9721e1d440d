package handlers

import (
	"time"

	"cuotas/api/internal/models"
)

type accountResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role.String(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

type realEstateResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newRealEstateResponse(re models.RealEstate) realEstateResponse {
	return realEstateResponse{
		ID:        re.ID,
		Name:      re.Name,
		Address:   re.Address,
		Phone:     re.Phone,
		Email:     re.Email,
		CreatedAt: re.CreatedAt,
		UpdatedAt: re.UpdatedAt,
	}
}

type propertyResponse struct {
	ID           int64     `json:"id"`
	RealEstateID int64     `json:"realEstateId"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	Price        int64     `json:"price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newPropertyResponse(p models.Property) propertyResponse {
	return propertyResponse{
		ID:           p.ID,
		RealEstateID: p.RealEstateID,
		Title:        p.Title,
		Address:      p.Address,
		Price:        p.PriceCents,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type clientResponse struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"accountId"`
	PropertyID   int64     `json:"propertyId"`
	RealEstateID int64     `json:"realEstateId"`
	SellerID     *int64    `json:"sellerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newClientResponse(c models.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		AccountID:    c.AccountID,
		PropertyID:   c.PropertyID,
		RealEstateID: c.RealEstateID,
		SellerID:     c.SellerID,
		CreatedAt:    c.CreatedAt,
	}
}

type installmentResponse struct {
	ID       int64      `json:"id"`
	ClientID int64      `json:"clientId"`
	Number   int        `json:"number"`
	Amount   int64      `json:"amount"`
	Paid     int64      `json:"paidAmount"`
	DueDate  string     `json:"dueDate"`
	Status   string     `json:"status"`
	PaidAt   *time.Time `json:"paidAt"`
}

func newInstallmentResponse(i models.Installment) installmentResponse {
	return installmentResponse{
		ID:       i.ID,
		ClientID: i.ClientID,
		Number:   i.Number,
		Amount:   i.AmountCents,
		Paid:     i.PaidCents,
		DueDate:  i.DueDate.Format(time.DateOnly),
		Status:   string(i.Status),
		PaidAt:   i.PaidAt,
	}
}

func newInstallmentList(items []models.Installment) []installmentResponse {
	out := make([]installmentResponse, 0, len(items))
	for _, i := range items {
		out = append(out, newInstallmentResponse(i))
	}
	return out
}

type paymentResponse struct {
	ID            int64      `json:"id"`
	InstallmentID int64      `json:"installmentId"`
	SubmittedBy   int64      `json:"submittedBy"`
	Amount        int64      `json:"amount"`
	PaidAt        time.Time  `json:"paidAt"`
	ProofMIME     string     `json:"proofMime"`
	ProofSize     int64      `json:"proofSize"`
	ProofURL      string     `json:"proofUrl,omitempty"`
	Status        string     `json:"status"`
	ReviewNote    string     `json:"reviewNote,omitempty"`
	ReviewedBy    *int64     `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		InstallmentID: p.InstallmentID,
		SubmittedBy:   p.SubmittedBy,
		Amount:        p.AmountCents,
		PaidAt:        p.PaidAt,
		ProofMIME:     p.ProofMIME,
		ProofSize:     p.ProofSize,
		Status:        string(p.Status),
		ReviewNote:    p.ReviewNote,
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
	}
}

func newPaymentList(items []models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(items))
	for _, p := range items {
		out = append(out, newPaymentResponse(p))
	}
	return out
}

type notificationResponse struct {
	ID        int64      `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
