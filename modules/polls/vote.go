package polls

import "fmt"

// Engine is the only way to change a poll once it exists.
type Engine struct {
	store *Store
}

func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// CastVote moves voter onto the given option of the poll, dropping any vote
// they held elsewhere in it, and returns the resulting poll. Votes on the same
// poll are applied one at a time.
func (e *Engine) CastVote(pollId string, option int, voter Voter) (Poll, error) {
	rec, exists := e.store.lookup(pollId)
	if !exists {
		return Poll{}, fmt.Errorf("%w: %s", ErrPollNotFound, pollId)
	}

	rec.locker.Lock()
	if option < 0 || option >= len(rec.poll.Options) {
		rec.locker.Unlock()
		return Poll{}, fmt.Errorf("%w: %d not in [0, %d) for poll %s", ErrInvalidOption, option, len(rec.poll.Options), pollId)
	}

	for k := range rec.poll.Options {
		rec.poll.Options[k].Voters = removeVoter(rec.poll.Options[k].Voters, voter.ID)
	}
	target := &rec.poll.Options[option]
	target.Voters = append(target.Voters, voter)

	snapshot := rec.poll.clone()
	rec.locker.Unlock()

	e.store.policy.Touched(pollId)
	return snapshot, nil
}

func removeVoter(voters []Voter, id string) []Voter {
	for k, v := range voters {
		if v.ID == id {
			// ids are unique per option, so there is at most one to drop
			return append(voters[:k:k], voters[k+1:]...)
		}
	}
	return voters
}
