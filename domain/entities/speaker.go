package entities

// Speaker identifies which party of the bridge owns a turn.
type Speaker string

const (
	SpeakerHost  Speaker = "host"
	SpeakerGuest Speaker = "guest"
)

// Valid reports whether the speaker is one of the two known parties.
func (s Speaker) Valid() bool {
	return s == SpeakerHost || s == SpeakerGuest
}

// Other returns the opposing party.
func (s Speaker) Other() Speaker {
	if s == SpeakerHost {
		return SpeakerGuest
	}
	return SpeakerHost
}
