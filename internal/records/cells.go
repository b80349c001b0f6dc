package records

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/gyeh/clinsum/internal/normalize"
)

// cellString renders a database value as the text a CSV export would carry.
func cellString(v any) string {
	if dv, ok := v.(driver.Valuer); ok {
		inner, err := dv.Value()
		if err != nil {
			return ""
		}
		if _, again := inner.(driver.Valuer); !again {
			v = inner
		}
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(normalize.DayLayout)
		}
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
