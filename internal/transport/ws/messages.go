package ws

import "github.com/Cooliokid956/sm64js-mmo-server/internal/game/message"

// clientEnvelope is the inbound JSON frame: a tagged union with exactly one
// request field set.
type clientEnvelope struct {
	Join      *joinRequest        `json:"join,omitempty"`
	Position  *message.PlayerData `json:"position,omitempty"`
	Attack    *attackRequest      `json:"attack,omitempty"`
	GrabFlag  *grabFlagRequest    `json:"grab_flag,omitempty"`
	Chat      *chatRequest        `json:"chat,omitempty"`
	Skin      *skinRequest        `json:"skin,omitempty"`
	Cosmetics *cosmeticsRequest   `json:"request_cosmetics,omitempty"`
}

type joinRequest struct {
	Level         uint32 `json:"level"`
	Name          string `json:"name"`
	UseLinkedName bool   `json:"use_linked_name"`
}

type attackRequest struct {
	FlagID         int    `json:"flag_id"`
	TargetSocketID uint32 `json:"target_socket_id"`
}

type grabFlagRequest struct {
	FlagID int        `json:"flag_id"`
	Pos    [3]float32 `json:"pos"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type skinRequest struct {
	SkinData []byte `json:"skin_data"`
}

type cosmeticsRequest struct{}

// joinReply is the transport's acceptance frame for a join request.
type joinReply struct {
	Accepted bool   `json:"accepted"`
	Level    uint32 `json:"level,omitempty"`
	Name     string `json:"name,omitempty"`
}

// cosmeticsReply carries the encoded skin payloads of all room members.
type cosmeticsReply struct {
	Skins [][]byte `json:"skins"`
}

// serverFrame is the outbound transport frame for replies the transport
// itself constructs; gameplay payloads from the core are delivered as-is.
type serverFrame struct {
	Join      *joinReply      `json:"join,omitempty"`
	Cosmetics *cosmeticsReply `json:"cosmetics,omitempty"`
}
