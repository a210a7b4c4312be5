// Package player holds the state read by the player shell.
package player

import "podcastr/internal/models"

// State is an immutable view of the player: the queued episodes and the
// index of the one currently loaded. The zero value is an empty player.
type State struct {
	episodes []models.Episode
	current  int
}

// Empty returns a player with nothing loaded.
func Empty() State {
	return State{}
}

// Play returns a new state with ep as the only queued episode.
func (s State) Play(ep models.Episode) State {
	return State{episodes: []models.Episode{ep}, current: 0}
}

// Current returns the loaded episode, if any.
func (s State) Current() (models.Episode, bool) {
	if s.current < 0 || s.current >= len(s.episodes) {
		return models.Episode{}, false
	}
	return s.episodes[s.current], true
}

// CurrentIndex returns the index of the loaded episode within Episodes.
func (s State) CurrentIndex() int {
	return s.current
}

// Episodes returns a copy of the queued episodes.
func (s State) Episodes() []models.Episode {
	result := make([]models.Episode, len(s.episodes))
	copy(result, s.episodes)
	return result
}
