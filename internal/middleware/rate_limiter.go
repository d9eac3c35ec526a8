package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// RateLimiter serializes message handling per Telegram identity with a
// single-slot channel. Besides keeping the bot from processing two messages
// from the same user at once, this is the critical section that stops
// concurrent voice notes from both passing the quota check before either
// records usage.
type RateLimiter struct {
	locks sync.Map
}

func (r *RateLimiter) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userLock, _ := r.locks.LoadOrStore(c.Sender().ID, make(chan struct{}, 1))
			userChan := userLock.(chan struct{})

			select {
			case userChan <- struct{}{}:
				defer func() {
					<-userChan
				}()
				return next(c)
			default:
				return c.Send("Please wait for the response from the bot.")
			}
		}
	}
}
