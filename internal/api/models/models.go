package models

import "github.com/smazurov/tf96ctl/internal/led"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	Modified  bool   `json:"modified" example:"false" doc:"Built from a tree with uncommitted changes"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Port models
type PortsData struct {
	Ports   []led.PortState `json:"ports" doc:"State of all sixteen ports"`
	Enabled int             `json:"enabled" example:"12" doc:"Number of enabled ports"`
}

type PortsResponse struct {
	Body PortsData
}

type PortPath struct {
	Port int `path:"port" example:"3" doc:"Port number, 0..15"`
}

type PortRequest struct {
	Port int `path:"port" example:"3" doc:"Port number, 0..15"`
	Body struct {
		Enabled bool `json:"enabled" example:"true" doc:"Enable (true) or disable (false) the port"`
	}
}

type PortResponse struct {
	Body led.PortState
}

// Intensity models
type LimitsData struct {
	ChannelMin int `json:"channel_min" example:"0" doc:"Lowest accepted channel intensity"`
	ChannelMax int `json:"channel_max" example:"15" doc:"Highest accepted channel intensity"`
	MasterMin  int `json:"master_min" example:"1" doc:"Lowest accepted master intensity"`
	MasterMax  int `json:"master_max" example:"15" doc:"Highest accepted master intensity"`
}

type ChannelsData struct {
	led.Levels
	Limits LimitsData `json:"limits" doc:"Accepted intensity bounds"`
}

type ChannelsResponse struct {
	Body ChannelsData
}

type ChannelRequest struct {
	Channel int `path:"channel" example:"4" doc:"Channel number, 0..15"`
	Body    struct {
		Intensity int `json:"intensity" example:"7" doc:"Channel intensity"`
	}
}

type ChannelData struct {
	Channel   int `json:"channel" example:"4" doc:"Channel number"`
	Intensity int `json:"intensity" example:"7" doc:"Commanded intensity"`
}

type ChannelResponse struct {
	Body ChannelData
}

type LevelRequest struct {
	Body struct {
		Level int `json:"level" example:"12" doc:"Intensity level"`
	}
}

type LevelData struct {
	Level int `json:"level" example:"12" doc:"Commanded level"`
}

type LevelResponse struct {
	Body LevelData
}

// Register models
type RegisterPath struct {
	Addr string `path:"addr" example:"0x0f" doc:"Register address, decimal or 0x-prefixed hex"`
}

type RegisterWriteRequest struct {
	Addr string `path:"addr" example:"0x0f" doc:"Register address, decimal or 0x-prefixed hex"`
	Body struct {
		Value int64 `json:"value" example:"65" doc:"Value to write"`
	}
}

type RegisterResponse struct {
	Body led.RegisterValue
}

type RegisterDumpRequest struct {
	From string `query:"from" default:"0x00" example:"0x00" doc:"First register"`
	To   string `query:"to" default:"0x0f" example:"0x0f" doc:"Last register"`
}

type RegisterDumpData struct {
	Registers []led.RegisterValue `json:"registers" doc:"Register values in address order"`
}

type RegisterDumpResponse struct {
	Body RegisterDumpData
}

// Color models
type ColorRequestData struct {
	Color string `json:"color" example:"#ff8800" doc:"Color as #rrggbb"`
}

type ColorMapRequest struct {
	Body ColorRequestData
}

type ColorMapData struct {
	Color string `json:"color" example:"#ff8800" doc:"Requested color"`
	Red   uint8  `json:"red" example:"15" doc:"Red device level"`
	Green uint8  `json:"green" example:"8" doc:"Green device level"`
	Blue  uint8  `json:"blue" example:"0" doc:"Blue device level"`
	// Device is the color the levels actually produce.
	Device string `json:"device" example:"#ff8800" doc:"Color reproduced from the device levels"`
}

type ColorMapResponse struct {
	Body ColorMapData
}

type GroupColorRequest struct {
	Group string `path:"group" example:"led1" doc:"Group name, or all"`
	Body  ColorRequestData
}

type GroupData struct {
	led.Group
	Color string `json:"color" example:"#ff8800" doc:"Color of the last commanded levels"`
}

type GroupsData struct {
	Groups []GroupData `json:"groups" doc:"LED groups"`
}

type GroupsResponse struct {
	Body GroupsData
}

type GroupColorData struct {
	Group  string   `json:"group" example:"led1" doc:"Group the color was applied to"`
	Color  string   `json:"color" example:"#ff8800" doc:"Applied color"`
	Levels [3]uint8 `json:"levels" doc:"Red, green, blue device levels"`
}

type GroupColorResponse struct {
	Body GroupColorData
}

// Blink models
type BlinkData struct {
	Enabled      bool   `json:"enabled" example:"true" doc:"Whether the scheduler toggles"`
	Control      int    `json:"control" example:"5" doc:"Speed control, 0 (slowest) to 10"`
	HalfPeriodMs int64  `json:"half_period_ms" example:"500" doc:"Time between toggles"`
	Phase        string `json:"phase" example:"on" doc:"Current phase"`
}

type BlinkResponse struct {
	Body BlinkData
}

type BlinkRequest struct {
	Body struct {
		Enabled bool `json:"enabled" example:"true" doc:"Start or stop blinking"`
		Control int  `json:"control" example:"5" doc:"Speed control, 0..10"`
	}
}

type PhaseRequest struct {
	Phase int `path:"phase" example:"0" doc:"Phase, 0 or 1"`
	Body  struct {
		First  string `json:"first" example:"1f" doc:"First address, hex"`
		Second string `json:"second" example:"0x20" doc:"Second address, hex"`
	}
}

type PhaseData struct {
	Phase     int       `json:"phase" example:"0" doc:"Phase that was written"`
	Registers [2]string `json:"registers" doc:"Registers written"`
}

type PhaseResponse struct {
	Body PhaseData
}
