package pool

// riskController gates economically-relevant amounts before any ledger
// mutation. Volume counters are bucketed by calendar day index
// (unix / 86400); per-account counters reset lazily on the first activity of
// a new day. Counters are recorded only after every check for the operation
// has passed, so a rejected trade never pollutes the accounting.
type riskController struct {
	limits RiskLimits

	dayVolume map[int64]uint64
	users     map[Account]*userDayVolume
}

type userDayVolume struct {
	day    int64
	volume uint64
}

func newRiskController() riskController {
	return riskController{
		dayVolume: make(map[int64]uint64),
		users:     make(map[Account]*userDayVolume),
	}
}

func dayIndex(now int64) int64 {
	return now / secondsPerDay
}

// checkTradeSize enforces the per-transaction ceiling only. Liquidity
// operations run through this without touching volume counters.
func (r *riskController) checkTradeSize(amount uint64) error {
	if r.limits.MaxTradeAmount != 0 && amount > r.limits.MaxTradeAmount {
		return ErrExceedsTransactionLimit
	}
	return nil
}

// check runs every gate for a swap of the given size.
func (r *riskController) check(account Account, amount uint64, now int64) error {
	if err := r.checkTradeSize(amount); err != nil {
		return err
	}

	day := dayIndex(now)

	if r.limits.DailyVolumeLimit != 0 {
		if r.dayVolume[day]+amount > r.limits.DailyVolumeLimit {
			return ErrExceedsDailyLimit
		}
	}

	if r.limits.UserDailyLimit != 0 {
		var used uint64
		if u, ok := r.users[account]; ok && u.day == day {
			used = u.volume
		}
		if used+amount > r.limits.UserDailyLimit {
			return ErrExceedsDailyLimit
		}
	}

	return nil
}

// record adds a committed swap to the day's counters.
func (r *riskController) record(account Account, amount uint64, now int64) {
	day := dayIndex(now)
	r.dayVolume[day] += amount

	u, ok := r.users[account]
	if !ok || u.day != day {
		r.users[account] = &userDayVolume{day: day, volume: amount}
		return
	}
	u.volume += amount
}

// usage reports the global and per-account volume consumed for the day.
func (r *riskController) usage(account Account, now int64) (global, user uint64) {
	day := dayIndex(now)
	global = r.dayVolume[day]
	if u, ok := r.users[account]; ok && u.day == day {
		user = u.volume
	}
	return global, user
}
