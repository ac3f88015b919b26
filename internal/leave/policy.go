package leave

// Policy is the yearly entitlement table. It is built once at startup and
// handed to the service; its fields are unexported so nothing mutates it.
type Policy struct {
	sick         int
	annual       int
	casual       int
	totalPerYear int
	maxSpanDays  int
}

func NewPolicy(sick, annual, casual, totalPerYear, maxSpanDays int) Policy {
	return Policy{
		sick:         sick,
		annual:       annual,
		casual:       casual,
		totalPerYear: totalPerYear,
		maxSpanDays:  maxSpanDays,
	}
}

func DefaultPolicy() Policy {
	return NewPolicy(10, 10, 5, 25, 30)
}

// Types lists the leave categories in report order.
func (p Policy) Types() []LeaveType {
	return []LeaveType{TypeSick, TypeAnnual, TypeCasual}
}

// Entitlement is informational: only TotalPerYear is enforced on submission.
func (p Policy) Entitlement(t LeaveType) int {
	switch t {
	case TypeSick:
		return p.sick
	case TypeAnnual:
		return p.annual
	case TypeCasual:
		return p.casual
	default:
		return 0
	}
}

func (p Policy) TotalPerYear() int { return p.totalPerYear }

func (p Policy) MaxSpanDays() int { return p.maxSpanDays }

func (p Policy) Remaining(t LeaveType, used int) int {
	if r := p.Entitlement(t) - used; r > 0 {
		return r
	}
	return 0
}
