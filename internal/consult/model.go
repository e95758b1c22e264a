package consult

import (
	"context"
	"time"
)

type Urgency string

const (
	UrgencyLow     Urgency = "Low"
	UrgencyMedium  Urgency = "Medium"
	UrgencyHigh    Urgency = "High"
	UrgencyUnknown Urgency = "Unknown"
	UrgencyInvalid Urgency = "Invalid"
	UrgencyError   Urgency = "Error"
)

// TimestampLayout is the minute-precision local time stored with every record.
const TimestampLayout = "2006-01-02 15:04"

type Request struct {
	FullName string `json:"fullname"`
	Symptoms string `json:"text"`
	Age      string `json:"age"`
}

type Result struct {
	Condition string  `json:"condition"`
	Urgency   Urgency `json:"urgency"`
	Advice    string  `json:"advice"`
}

// Record is one consultation as written to the flat and relational logs.
// Records are append-only.
type Record struct {
	ID        int64
	Timestamp string
	FullName  string
	Age       string
	Symptoms  string
	Condition string
	Urgency   Urgency
	Advice    string
}

func NewRecord(now time.Time, req Request, res Result) Record {
	return Record{
		Timestamp: now.Format(TimestampLayout),
		FullName:  req.FullName,
		Age:       req.Age,
		Symptoms:  req.Symptoms,
		Condition: res.Condition,
		Urgency:   res.Urgency,
		Advice:    res.Advice,
	}
}

// Recorder persists consultation records. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Append(ctx context.Context, r Record) error
}

// Recorders appends to each recorder in order and stops at the first failure.
type Recorders []Recorder

func (rs Recorders) Append(ctx context.Context, r Record) error {
	for _, rec := range rs {
		if err := rec.Append(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
