package game

import "encoding/xml"

// Round is the body of GET /api/game: one knight to be countered.
type Round struct {
	GameID int    `json:"gameId"`
	Knight Knight `json:"knight"`
}

type Knight struct {
	Name      string `json:"name"`
	Attack    int    `json:"attack"`
	Armor     int    `json:"armor"`
	Agility   int    `json:"agility"`
	Endurance int    `json:"endurance"`
}

// Attributes returns the knight's snapshot used by the allocator.
func (k Knight) Attributes() RoundAttributes {
	return RoundAttributes{Attack: k.Attack, Armor: k.Armor, Agility: k.Agility, Endurance: k.Endurance}
}

// RoundAttributes is an immutable snapshot of one round's opponent.
type RoundAttributes struct {
	Attack    int
	Armor     int
	Agility   int
	Endurance int
}

// Values returns the attributes in wire order: attack, armor, agility, endurance.
func (a RoundAttributes) Values() [4]int {
	return [4]int{a.Attack, a.Armor, a.Agility, a.Endurance}
}

// Allocation is the dragon submitted for a round. Slot i counters knight attribute i.
type Allocation struct {
	Scale int `json:"scale"`
	Claw  int `json:"claw"`
	Wing  int `json:"wing"`
	Fire  int `json:"fire"`
}

// AllocationFromValues maps slot values in wire order to an Allocation.
func AllocationFromValues(v [4]int) Allocation {
	return Allocation{Scale: v[0], Claw: v[1], Wing: v[2], Fire: v[3]}
}

func (a Allocation) Values() [4]int {
	return [4]int{a.Scale, a.Claw, a.Wing, a.Fire}
}

func (a Allocation) Total() int {
	return a.Scale + a.Claw + a.Wing + a.Fire
}

const StatusVictory = "Victory"

// SubmissionResult is the body returned by PUT /api/game/{id}/solution.
type SubmissionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r SubmissionResult) Victory() bool {
	return r.Status == StatusVictory
}

// Weather codes reported by the weather station.
const (
	WeatherNormal    = "NMR"
	WeatherStorm     = "SRO"
	WeatherHeavyRain = "HVA"
	WeatherLongDry   = "T E"
	WeatherFog       = "FUNDEFINEDG"
)

// WeatherReport is the XML body of GET /weather/api/report/{id}.
type WeatherReport struct {
	XMLName xml.Name `xml:"report" json:"-"`
	Time    string   `xml:"time" json:"time,omitempty"`
	Coords  Coords   `xml:"coords" json:"coords"`
	Code    string   `xml:"code" json:"code"`
	Message string   `xml:"message" json:"message,omitempty"`
	Rating  int      `xml:"varX-Rating" json:"rating"`
}

type Coords struct {
	X float64 `xml:"x" json:"x"`
	Y float64 `xml:"y" json:"y"`
	Z float64 `xml:"z" json:"z"`
}
