package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage points at a posted transaction. It carries the
// id and a couple of display fields; consumers load the full row themselves.
type TransactionRecordedMessage struct {
	ID          int64     `json:"id"`
	MonthID     string    `json:"month_id"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(id int64, monthID string, amountCents int64) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:          id,
		MonthID:     monthID,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MonthClosedMessage announces a completed month close. The report worker
// reacts by exporting the closed month.
type MonthClosedMessage struct {
	MonthID     string    `json:"month_id"`
	EndingCents int64     `json:"ending_cents"`
	NextMonthID string    `json:"next_month_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewMonthClosedMessage(monthID string, endingCents int64, nextMonthID string) *MonthClosedMessage {
	return &MonthClosedMessage{
		MonthID:     monthID,
		EndingCents: endingCents,
		NextMonthID: nextMonthID,
		Timestamp:   time.Now(),
	}
}

func (m *MonthClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MonthClosedMessageFromJSON(data []byte) (*MonthClosedMessage, error) {
	var msg MonthClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
