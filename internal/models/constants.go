package models

// Роли пользователей.
const (
	RoleBusiness   = "BUSINESS"
	RoleFreelancer = "FREELANCER"
)

// ProjectStatus константы статусов проектов.
const (
	ProjectStatusOpen   = "OPEN"
	ProjectStatusClosed = "CLOSED"
)

// BidStatus константы статусов ставок.
const (
	BidStatusSubmitted   = "SUBMITTED"
	BidStatusShortlisted = "SHORTLISTED"
	BidStatusRejected    = "REJECTED"
	BidStatusAccepted    = "ACCEPTED"
)

// BidType константы типов ставок.
const (
	BidTypeFixed  = "FIXED"
	BidTypeHourly = "HOURLY"
)

// EngagementStatus константы статусов сотрудничества.
const (
	EngagementStatusNegotiation = "NEGOTIATION"
	EngagementStatusActive      = "ACTIVE"
	EngagementStatusCompleted   = "COMPLETED"
	EngagementStatusCancelled   = "CANCELLED"
)

// PaymentStatus константы статусов оплаты.
const (
	PaymentStatusUnpaid        = "UNPAID"
	PaymentStatusPartiallyPaid = "PARTIALLY_PAID"
	PaymentStatusPaid          = "PAID"
)

// MilestoneStatus константы статусов этапов.
const (
	MilestoneStatusPending    = "PENDING"
	MilestoneStatusInProgress = "IN_PROGRESS"
	MilestoneStatusSubmitted  = "SUBMITTED"
	MilestoneStatusApproved   = "APPROVED"
	MilestoneStatusRejected   = "REJECTED"
)

// DisputeStatus константы статусов споров.
const (
	DisputeStatusOpen        = "OPEN"
	DisputeStatusUnderReview = "UNDER_REVIEW"
	DisputeStatusResolved    = "RESOLVED"
)

// ValidBidStatuses список валидных статусов ставок.
var ValidBidStatuses = map[string]struct{}{
	BidStatusSubmitted:   {},
	BidStatusShortlisted: {},
	BidStatusRejected:    {},
	BidStatusAccepted:    {},
}

// ValidPaymentStatuses список валидных статусов оплаты.
var ValidPaymentStatuses = map[string]struct{}{
	PaymentStatusUnpaid:        {},
	PaymentStatusPartiallyPaid: {},
	PaymentStatusPaid:          {},
}

// ValidMilestoneStatuses список валидных статусов этапов.
var ValidMilestoneStatuses = map[string]struct{}{
	MilestoneStatusPending:    {},
	MilestoneStatusInProgress: {},
	MilestoneStatusSubmitted:  {},
	MilestoneStatusApproved:   {},
	MilestoneStatusRejected:   {},
}

// ValidDisputeStatuses список валидных статусов споров.
var ValidDisputeStatuses = map[string]struct{}{
	DisputeStatusOpen:        {},
	DisputeStatusUnderReview: {},
	DisputeStatusResolved:    {},
}

// EngagementTransitions описывает разрешённые переходы статусов сотрудничества.
// COMPLETED и CANCELLED — терминальные состояния.
var EngagementTransitions = map[string][]string{
	EngagementStatusNegotiation: {EngagementStatusActive, EngagementStatusCancelled},
	EngagementStatusActive:      {EngagementStatusCompleted, EngagementStatusCancelled},
	EngagementStatusCompleted:   {},
	EngagementStatusCancelled:   {},
}

// MilestoneTransitions описывает разрешённые переходы статусов этапов.
var MilestoneTransitions = map[string][]string{
	MilestoneStatusPending:    {MilestoneStatusInProgress},
	MilestoneStatusInProgress: {MilestoneStatusSubmitted},
	MilestoneStatusSubmitted:  {MilestoneStatusApproved, MilestoneStatusRejected},
	MilestoneStatusApproved:   {},
	MilestoneStatusRejected:   {},
}

// CanTransition проверяет, разрешён ли переход между статусами по таблице.
func CanTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
