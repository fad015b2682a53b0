package notify

import (
	"fmt"

	"github.com/Dauren-Zh/tourney-engine/models"
	"github.com/Dauren-Zh/tourney-engine/pairing"
)

const (
	TypeStandingsUpdated = "STANDINGS_UPDATED"
	TypePairingsCreated  = "PAIRINGS_CREATED"
)

// Publisher is a fire-and-forget sink for live tournament updates. The
// websocket hub is the production implementation.
type Publisher interface {
	PublishStandings(tournamentID int, snapshot *models.StandingsSnapshot, changed []int)
	PublishPairings(tournamentID int, result *pairing.Result)
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type PairingsPayload struct {
	TournamentID int             `json:"tournament_id"`
	Result       *pairing.Result `json:"result"`
}

type StandingsPayload struct {
	TournamentID int                       `json:"tournament_id"`
	Snapshot     *models.StandingsSnapshot `json:"snapshot"`
	// ChangedParticipantIDs lists entries whose rank or score moved since
	// the previous snapshot, letting clients animate just those rows.
	ChangedParticipantIDs []int `json:"changed_participant_ids"`
}

// TournamentRoom names the hub room for a tournament.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

type hubPublisher struct {
	hub *Hub
}

func NewHubPublisher(hub *Hub) Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) PublishPairings(tournamentID int, result *pairing.Result) {
	room := TournamentRoom(tournamentID)
	p.hub.BroadcastToRoom(room, Message{
		Type:   TypePairingsCreated,
		RoomID: room,
		Payload: PairingsPayload{
			TournamentID: tournamentID,
			Result:       result,
		},
	})
}

func (p *hubPublisher) PublishStandings(tournamentID int, snapshot *models.StandingsSnapshot, changed []int) {
	room := TournamentRoom(tournamentID)
	p.hub.BroadcastToRoom(room, Message{
		Type:   TypeStandingsUpdated,
		RoomID: room,
		Payload: StandingsPayload{
			TournamentID:          tournamentID,
			Snapshot:              snapshot,
			ChangedParticipantIDs: changed,
		},
	})
}
