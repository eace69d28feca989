package led

import (
	"slices"
	"strings"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

// AllGroups selects every group at once.
const AllGroups = "all"

// Group is an RGB LED wired to three ports.
type Group struct {
	Name  string `json:"name" example:"led1" doc:"Group name"`
	Red   int    `json:"red" example:"2" doc:"Port driving the red die"`
	Green int    `json:"green" example:"0" doc:"Port driving the green die"`
	Blue  int    `json:"blue" example:"1" doc:"Port driving the blue die"`
}

// Ports returns the group's ports in red, green, blue order.
func (g Group) Ports() [3]int {
	return [3]int{g.Red, g.Green, g.Blue}
}

var builtinGroups = []Group{
	{Name: "led1", Red: 2, Green: 0, Blue: 1},
	{Name: "led2", Red: 5, Green: 4, Blue: 3},
	{Name: "signal", Red: 8, Green: 9, Blue: 10},
	{Name: "led3", Red: 14, Green: 13, Blue: 15},
}

// Groups returns the board's LED groups.
func Groups() []Group {
	return slices.Clone(builtinGroups)
}

// SelectGroups resolves a group name, or AllGroups, to the groups it covers.
func SelectGroups(name string) ([]Group, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == AllGroups {
		return Groups(), nil
	}
	for _, g := range builtinGroups {
		if g.Name == name {
			return []Group{g}, nil
		}
	}
	return nil, &protocol.Error{Code: protocol.ErrCodeRange, Message: "unknown LED group " + name}
}
