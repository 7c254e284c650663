package stats

import (
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextFire returns the duration from now until expr's next fire time.
// Returns 0 when the expression does not parse.
func nextFire(expr string, now time.Time) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	d := sched.Next(now).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
