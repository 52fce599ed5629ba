package engine

import "time"

// Greetings by part of day.
const (
	GreetingNight     = "Доброй ночи"
	GreetingMorning   = "Доброе утро"
	GreetingAfternoon = "Добрый день"
	GreetingEvening   = "Добрый вечер"
)

// Greeting picks the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return GreetingNight
	case h < 12:
		return GreetingMorning
	case h < 18:
		return GreetingAfternoon
	default:
		return GreetingEvening
	}
}
