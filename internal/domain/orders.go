package domain

type PayStatus string

const (
	PaySuccessful PayStatus = "Successful"
	PayPending    PayStatus = "Pending"
	PayFailed     PayStatus = "Failed"
)

type Party struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderItem struct {
	Product struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"product"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID              string      `json:"_id"`
	OrderID         string      `json:"orderId"`
	UserID          *Party      `json:"userId"`
	User            *Party      `json:"user"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"`
	PayStatus       PayStatus   `json:"payStatus"`
	Status          string      `json:"status"`
	ShippingAddress struct {
		Address string `json:"address"`
	} `json:"shippingAddress"`
	CreatedAt Timestamp `json:"createdAt"`
}

func (o Order) Key() string { return firstNonEmpty(o.ID, o.OrderID) }

// Customer returns whichever customer reference the backend populated.
func (o Order) Customer() Party {
	if o.UserID != nil && (o.UserID.Name != "" || o.UserID.Email != "") {
		return *o.UserID
	}
	if o.User != nil {
		return *o.User
	}
	return Party{}
}

// ItemsTotal sums price*quantity; the listing shows this rather than
// totalPrice, which some orders leave at zero.
func (o Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

type PaymentSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	SuccessfulPayments int     `json:"successfulPayments"`
	PendingPayments    int     `json:"pendingPayments"`
	FailedPayments     int     `json:"failedPayments"`
}

type CustomerPayments struct {
	Customers      []Order        `json:"customers"`
	PaymentSummary PaymentSummary `json:"paymentSummary"`
}

type Review struct {
	ID      string `json:"_id"`
	Product struct {
		Name   string   `json:"name"`
		Images []string `json:"images"`
	} `json:"product"`
	ReviewerName string    `json:"reviewerName"`
	Reviewer     string    `json:"reviewer"`
	ReviewerType string    `json:"reviewerType"`
	Rating       float64   `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	Verified     bool      `json:"verified"`
	Helpful      int       `json:"helpful"`
	Images       []string  `json:"images"`
	CreatedAt    Timestamp `json:"createdAt"`
	VendorReply  *struct {
		Message  string `json:"message"`
		IsPublic bool   `json:"isPublic"`
	} `json:"vendorReply"`
}

func (r Review) By() string { return firstNonEmpty(r.ReviewerName, r.Reviewer, "Anonymous") }

type ReviewStats struct {
	AverageRating      float64        `json:"averageRating"`
	TotalReviews       int            `json:"totalReviews"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

type ReviewList struct {
	Stats   ReviewStats `json:"stats"`
	Reviews []Review    `json:"reviews"`
}
