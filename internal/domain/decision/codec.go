package decision

import (
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Envelope is the wire form of a Decision: a kind tag plus the one payload
// that matches it.
type Envelope struct {
	Kind                   Kind                    `json:"kind"`
	MakeOrder              *MakeOrder              `json:"makeOrder,omitempty"`
	ListForHearing         *ListForHearing         `json:"listForHearing,omitempty"`
	WrittenRepresentations *WrittenRepresentations `json:"writtenRepresentations,omitempty"`
	RequestMoreInformation *RequestMoreInformation `json:"requestMoreInformation,omitempty"`
}

// Encode wraps d for transport.
func Encode(d Decision) Envelope {
	switch v := d.(type) {
	case MakeOrder:
		return Envelope{Kind: KindMakeOrder, MakeOrder: &v}
	case ListForHearing:
		return Envelope{Kind: KindListForHearing, ListForHearing: &v}
	case WrittenRepresentations:
		return Envelope{Kind: KindWrittenRepresentations, WrittenRepresentations: &v}
	case RequestMoreInformation:
		return Envelope{Kind: KindRequestMoreInformation, RequestMoreInformation: &v}
	}
	return Envelope{}
}

// Decode returns the Decision carried by e. The payload must match the kind.
func (e Envelope) Decode() (Decision, error) {
	switch e.Kind {
	case KindMakeOrder:
		if e.MakeOrder != nil {
			return *e.MakeOrder, nil
		}
	case KindListForHearing:
		if e.ListForHearing != nil {
			return *e.ListForHearing, nil
		}
		return ListForHearing{}, nil
	case KindWrittenRepresentations:
		if e.WrittenRepresentations != nil {
			return *e.WrittenRepresentations, nil
		}
	case KindRequestMoreInformation:
		if e.RequestMoreInformation != nil {
			return *e.RequestMoreInformation, nil
		}
	default:
		return nil, errors.New(errors.ErrCodeUnknownDecision, "unknown decision kind").WithDetail(string(e.Kind))
	}
	return nil, errors.InvalidParam("decision payload missing").WithDetail(string(e.Kind))
}

//Personal.AI order the ending
