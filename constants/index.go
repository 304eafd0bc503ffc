package constants

// Ticket status values. A ticket only exists once payment is confirmed,
// so Paid is the status every issued ticket starts with.
const (
	STATUS_PAID = "Paid"

	TICKET_TYPE_REGULAR = "Regular"
	TICKET_TYPE_VIP     = "VIP"
)

// Synthetic references for tickets issued outside the payment pipeline.
const (
	REFERENCE_BULK_IMPORT  = "bulk_import"
	REFERENCE_ADMIN_PREFIX = "admin_"
)

// Fallback prices in GHS, overridable via TICKET_UNIT_PRICE / VIP_TICKET_PRICE.
const (
	DEFAULT_UNIT_PRICE = "300"
	DEFAULT_VIP_PRICE  = "500"
)

const (
	DEFAULT_EVENT_DATE = "Dec 27, 2025"
	DEFAULT_EVENT_TIME = "09:00 AM"
	EVENT_TITLE        = "VBS 2025: Limitless"
)

// Response messages.
const (
	UNAUTHORIZED          = "Unauthorized"
	TICKET_NOT_FOUND      = "Ticket not found"
	TICKET_ALREADY_USED   = "Already used"
	PHONE_HAS_TICKET      = "This number already has a ticket."
	INVALID_LOOKUP        = "Invalid phone number or access code"
	PAYMENT_NOT_CONFIRMED = "Payment not yet confirmed"
)
