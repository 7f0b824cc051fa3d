package engine

import "fmt"

// EventKind grades an empire event for presentation.
type EventKind string

const (
	EventNeutral   EventKind = "neutral"
	EventMinor     EventKind = "minor"
	EventPositive  EventKind = "positive"
	EventSuccess   EventKind = "success"
	EventNegative  EventKind = "negative"
	EventLegendary EventKind = "legendary"
)

// EmpireEvent is a pre-formatted notification handed to the UI after
// recruiting and quest completion.
type EmpireEvent struct {
	Status  EventKind `json:"status"`
	Message string    `json:"message"`
}

var questReturnPhrases = []string{
	"%s returns from %q weary but empty-handed.",
	"%s comes home from %q with nothing to show for it.",
	"%s survived %q, though the spoils eluded them.",
}

var questArtifactPhrases = []string{
	"%s returns from %q bearing the %s!",
	"%s emerges victorious from %q, clutching the %s.",
}

var questItemPhrases = []string{
	"%s brings back the %s from %q.",
	"Word spreads of %s recovering the %s during %q.",
}

var questRelicPhrases = []string{
	"Legends will tell how %s claimed the %s in %q!",
	"%s wrests the %s from the depths of %q — a relic for the ages!",
}

var questDeathPhrases = []string{
	"%s never returned from %q. The empire mourns.",
	"The quest %q claimed the life of %s.",
}

var questMercyPhrases = []string{
	"%s fell during %q, but the Mercy of Orrivane carried them home.",
	"Death reached for %s in %q; the Mercy of Orrivane turned it away.",
}

var recruitDonePhrases = []string{
	"Fresh %s muster at %s.",
	"The %s trained at %s stand ready.",
}

func questReturnEvent(rng Rand, heroName, questName string) EmpireEvent {
	return EmpireEvent{EventNeutral, fmt.Sprintf(RandomElement(rng, questReturnPhrases), heroName, questName)}
}

func questArtifactEvent(rng Rand, heroName, questName, artifactName string) EmpireEvent {
	return EmpireEvent{EventPositive, fmt.Sprintf(RandomElement(rng, questArtifactPhrases), heroName, questName, artifactName)}
}

func questItemEvent(rng Rand, heroName, questName, itemName string) EmpireEvent {
	return EmpireEvent{EventSuccess, fmt.Sprintf(RandomElement(rng, questItemPhrases), heroName, itemName, questName)}
}

func questRelicEvent(rng Rand, heroName, questName, relicName string) EmpireEvent {
	return EmpireEvent{EventLegendary, fmt.Sprintf(RandomElement(rng, questRelicPhrases), heroName, relicName, questName)}
}

func questDeathEvent(rng Rand, heroName, questName string) EmpireEvent {
	return EmpireEvent{EventNegative, fmt.Sprintf(RandomElement(rng, questDeathPhrases), heroName, questName)}
}

func questMercyEvent(rng Rand, heroName, questName string) EmpireEvent {
	return EmpireEvent{EventMinor, fmt.Sprintf(RandomElement(rng, questMercyPhrases), heroName, questName)}
}

func recruitDoneEvent(rng Rand, unitName, landID string) EmpireEvent {
	return EmpireEvent{EventMinor, fmt.Sprintf(RandomElement(rng, recruitDonePhrases), unitName, landID)}
}
