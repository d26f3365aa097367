package store

import "time"

type Event struct {
	Id                   int64     `json:"id" yaml:"-"`
	Title                string    `json:"title" yaml:"title"`
	Date                 string    `json:"date" yaml:"date"`
	Location             string    `json:"location" yaml:"location"`
	Description          string    `json:"description" yaml:"description"`
	RegistrationDeadline string    `json:"registration_deadline" yaml:"registration_deadline"`
	PosterURL            string    `json:"poster_url" yaml:"poster_url"`
	Fee                  int64     `json:"fee" yaml:"fee"`
	CreatedAt            time.Time `json:"created_at" yaml:"-"`
}

type News struct {
	Id        int64     `json:"id" yaml:"-"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Category  string    `json:"category" yaml:"category"`
	ImageURL  string    `json:"image_url" yaml:"image_url"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

type GalleryItem struct {
	Id        int64     `json:"id" yaml:"-"`
	ImageURL  string    `json:"image_url" yaml:"image_url"`
	Category  string    `json:"category" yaml:"category"`
	Caption   string    `json:"caption" yaml:"caption"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// Member is a member of the executive committee.
type Member struct {
	Id        int64     `json:"id" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	Position  string    `json:"position" yaml:"position"`
	Email     string    `json:"email" yaml:"email"`
	Phone     string    `json:"phone" yaml:"phone"`
	Bio       string    `json:"bio" yaml:"bio"`
	ImageURL  string    `json:"image_url" yaml:"image_url"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

type Registration struct {
	Id          int64     `json:"id"`
	EventId     int64     `json:"event_id"`
	Name        string    `json:"name"`
	Affiliation string    `json:"affiliation"`
	Age         int       `json:"age"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationListing is a registration as shown on the admin dashboard,
// joined with its event and its most recent payment.
type RegistrationListing struct {
	Registration
	EventTitle     string `json:"event_name"`
	EventDate      string `json:"event_date"`
	PaymentStatus  string `json:"payment_status"`
	PaymentAmount  int64  `json:"amount"`
	MpesaReference string `json:"mpesa_reference"`
}

type RegistrationSummary struct {
	EventId            int64  `json:"event_id"`
	EventTitle         string `json:"event_name"`
	TotalRegistrations int64  `json:"total_registrations"`
	CompletedPayments  int64  `json:"completed_payments"`
	CollectedAmount    int64  `json:"collected_amount"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentExpired   PaymentStatus = "expired"
)

const PaymentMethodMpesa = "mpesa"

type Payment struct {
	Id             int64         `json:"id"`
	RegistrationId int64         `json:"registration_id"`
	Amount         int64         `json:"amount"`
	Method         string        `json:"payment_method"`
	Status         PaymentStatus `json:"payment_status"`
	MpesaReference string        `json:"mpesa_reference"`
	PaymentDate    *time.Time    `json:"payment_date"`
	CreatedAt      time.Time     `json:"created_at"`
}

type PaymentSummary struct {
	EventId           int64  `json:"event_id"`
	EventTitle        string `json:"event_name"`
	TotalPayments     int64  `json:"total_payments"`
	TotalAmount       int64  `json:"total_amount"`
	CompletedPayments int64  `json:"completed_payments"`
	CollectedAmount   int64  `json:"collected_amount"`
}

// Confirmation carries everything the confirmation email needs about a
// registration whose payment has completed.
type Confirmation struct {
	Event        Event
	Registration Registration
	Payment      Payment
}

// Fixture is a set of rows loaded by Seed.
type Fixture struct {
	Events  []Event       `yaml:"events"`
	News    []News        `yaml:"news"`
	Gallery []GalleryItem `yaml:"gallery"`
	Members []Member      `yaml:"members"`
}
