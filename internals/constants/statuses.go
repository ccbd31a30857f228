package constants

type RequestStatus string

const (
	RequestPending   RequestStatus = "Pending"
	RequestApproved  RequestStatus = "Approved"
	RequestFulfilled RequestStatus = "Fulfilled"
	RequestRejected  RequestStatus = "Rejected"
	RequestCancelled RequestStatus = "Cancelled"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestApproved, RequestRejected, RequestCancelled},
	RequestApproved: {RequestFulfilled, RequestCancelled},
}

// CanTransition reports whether a blood request may move from -> to.
// Terminal states have no outgoing edges.
func (from RequestStatus) CanTransition(to RequestStatus) bool {
	for _, s := range requestTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestFulfilled, RequestRejected, RequestCancelled:
		return true
	}
	return false
}

type DonationStatus string

const (
	DonationCompleted DonationStatus = "Completed"
	DonationPending   DonationStatus = "Pending"
	DonationCancelled DonationStatus = "Cancelled"
)

func (from DonationStatus) CanTransition(to DonationStatus) bool {
	return from == DonationPending && (to == DonationCompleted || to == DonationCancelled)
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
	AppointmentPending   AppointmentStatus = "Pending"
)

// Open reports whether the appointment can still be edited or completed.
func (s AppointmentStatus) Open() bool {
	return s == AppointmentScheduled || s == AppointmentPending
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)
