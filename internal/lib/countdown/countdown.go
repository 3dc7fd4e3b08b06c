// Package countdown раскладывает оставшееся до раскрытия время на дни, часы,
// минуты и секунды для отображения таймера.
package countdown

import (
	"fmt"
	"time"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Remaining — остаток времени, разложенный на целые единицы.
// Expired выставлен только у Zero.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

// Zero — терминальное значение, когда таймер истёк. Остаток меньше секунды
// до окончания даёт нулевые единицы, но не Zero.
var Zero = Remaining{Expired: true}

// Compute возвращает остаток времени от now до end с усечением до целых единиц.
// Если разница не положительна, возвращается Zero.
func Compute(end, now time.Time) Remaining {
	if !end.After(now) {
		return Zero
	}
	diff := end.Sub(now).Milliseconds()

	days := diff / msPerDay
	diff %= msPerDay
	hours := diff / msPerHour
	diff %= msPerHour
	minutes := diff / msPerMinute
	diff %= msPerMinute

	return Remaining{
		Days:    days,
		Hours:   hours,
		Minutes: minutes,
		Seconds: diff / msPerSecond,
	}
}

// IsZero сообщает, истёк ли таймер.
func (r Remaining) IsZero() bool {
	return r.Expired
}

// String форматирует остаток как "HH:MM:SS" либо "Dd:HH:MM:SS", если дней больше нуля.
func (r Remaining) String() string {
	if r.Days > 0 {
		return fmt.Sprintf("%dd:%02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", r.Hours, r.Minutes, r.Seconds)
}
