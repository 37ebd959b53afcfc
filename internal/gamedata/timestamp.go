package gamedata

import (
	"encoding/json"
	"time"
)

// isoLayout совпадает с форматом Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Timestamp - момент времени, сериализуемый как ISO-строка в UTC с миллисекундами.
type Timestamp struct {
	time.Time
}

// NewTimestamp усекает время до миллисекунд, чтобы значение переживало JSON без изменений.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// Now возвращает текущий момент в виде Timestamp.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

// MarshalJSON пишет нулевое время как null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON принимает ISO/RFC3339 строку или миллисекунды эпохи.
// Нераспознанные значения дают нулевое время без ошибки.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Time = time.Time{}
		return nil
	}
	*t = timestampFromAny(v)
	return nil
}

func timestampFromAny(v any) Timestamp {
	switch val := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return Timestamp{}
		}
		return NewTimestamp(parsed)
	case float64:
		if !isFinite(val) || val <= 0 {
			return Timestamp{}
		}
		return NewTimestamp(time.UnixMilli(int64(val)))
	case Timestamp:
		return val
	}
	return Timestamp{}
}
