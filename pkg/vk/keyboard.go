package vk

import "encoding/json"

// Button colours.
const (
	ColorPrimary   = "primary"
	ColorSecondary = "secondary"
	ColorPositive  = "positive"
	ColorNegative  = "negative"
)

// Keyboard is a bot keyboard attached to a message.
type Keyboard struct {
	OneTime bool       `json:"one_time"`
	Inline  bool       `json:"inline"`
	Buttons [][]Button `json:"buttons"`
}

// Button is one keyboard button.
type Button struct {
	Action Action `json:"action"`
	Color  string `json:"color,omitempty"`
}

// Action is what a button does. Only text buttons are used here.
type Action struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Payload string `json:"payload,omitempty"`
}

// NewKeyboard creates an empty keyboard with one open row.
func NewKeyboard(inline bool) *Keyboard {
	return &Keyboard{Inline: inline, Buttons: [][]Button{{}}}
}

// Add appends a text button to the current row.
func (k *Keyboard) Add(label, color string) *Keyboard {
	last := len(k.Buttons) - 1
	k.Buttons[last] = append(k.Buttons[last], Button{
		Action: Action{Type: "text", Label: label},
		Color:  color,
	})
	return k
}

// Row starts a new row.
func (k *Keyboard) Row() *Keyboard {
	k.Buttons = append(k.Buttons, []Button{})
	return k
}

// JSON encodes the keyboard for the keyboard parameter of messages.send.
func (k *Keyboard) JSON() (string, error) {
	data, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MoreLabel is the caption of the "send another postcard" button.
const MoreLabel = "Ещё открытку"

// MoreKeyboard is the inline keyboard sent with every postcard reply.
func MoreKeyboard() *Keyboard {
	return NewKeyboard(true).Add(MoreLabel, ColorPrimary)
}
