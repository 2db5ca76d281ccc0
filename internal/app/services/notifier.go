package services

// Live event names pushed to connected clients
const (
	EventRentalStarted     = "rental.started"
	EventRentalEnded       = "rental.ended"
	EventRentalExpired     = "rental.expired"
	EventEnrollmentCreated = "enrollment.created"
)

// Notifier pushes an event to every open connection of a user.
// Delivery is best effort and must not block the caller.
type Notifier interface {
	Notify(userID int64, event string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(int64, string, interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// RentalEvent is the payload of the rental.* events
type RentalEvent struct {
	HouseID  int64  `json:"houseId"`
	RentalID int64  `json:"rentalId"`
	RenterID int64  `json:"renterId"`
	Title    string `json:"title,omitempty"`
}

// EnrollmentEvent is the payload of enrollment.created
type EnrollmentEvent struct {
	CourseID  int64  `json:"courseId"`
	StudentID int64  `json:"studentId"`
	Title     string `json:"title"`
}
