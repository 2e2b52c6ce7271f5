package polls

import "time"

type Voter struct {
	ID   string
	Name string
}

type Option struct {
	Text string
	// Voters are kept in the order they last joined this option.
	Voters []Voter
}

type Poll struct {
	ID        string
	Title     string
	Options   []Option
	CreatedBy string
	// Channel is where the poll message lives, used to address edits.
	Channel string
	Created time.Time
}

// clone deep-copies the poll so callers can never reach into store state.
func (p Poll) clone() Poll {
	c := p
	c.Options = make([]Option, len(p.Options))
	for k, v := range p.Options {
		c.Options[k] = Option{Text: v.Text, Voters: append([]Voter(nil), v.Voters...)}
	}
	return c
}

// VoterOption returns the index of the option voterId currently holds, or -1.
func (p Poll) VoterOption(voterId string) int {
	for k, v := range p.Options {
		for _, voter := range v.Voters {
			if voter.ID == voterId {
				return k
			}
		}
	}
	return -1
}
