package demand

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Leg is one walk segment between two network edges.
type Leg struct {
	From string
	To   string
}

// Trip is an ordered walk sequence of one pedestrian, immutable once built.
// Invariants: len(Times) == len(Legs) == len(Durations) and
// len(WaitTimes) == len(Legs) - 1.
type Trip struct {
	// ID follows the "{pedestrianID}_{sequence}" scheme.
	ID           string
	PedestrianID int

	// StartTime in seconds from the simulation epoch.
	StartTime int

	Legs []Leg
	// Times are per-leg departure offsets within the trip's day.
	Times     []int
	Durations []int
	// WaitTimes are the dwell durations at each intermediate stop.
	WaitTimes []int
}

type tripChild struct {
	XMLName  xml.Name
	From     string `xml:"from,attr,omitempty"`
	To       string `xml:"to,attr,omitempty"`
	Lane     string `xml:"lane,attr,omitempty"`
	Duration string `xml:"duration,attr,omitempty"`
}

type personElement struct {
	XMLName  xml.Name `xml:"person"`
	ID       string   `xml:"id,attr"`
	Depart   string   `xml:"depart,attr"`
	Type     string   `xml:"type,attr"`
	Children []tripChild
}

// element renders the trip as a SUMO person with alternating walk and stop
// instructions. The final leg home carries no stop.
func (t *Trip) element() personElement {
	person := personElement{
		ID:     "ped" + t.ID,
		Depart: strconv.Itoa(t.StartTime),
		Type:   "ped_pedestrian",
	}

	for i, leg := range t.Legs {
		person.Children = append(person.Children, tripChild{
			XMLName: xml.Name{Local: "walk"},
			From:    leg.From,
			To:      leg.To,
		})

		if i < len(t.Legs)-1 {
			person.Children = append(person.Children, tripChild{
				XMLName:  xml.Name{Local: "stop"},
				Lane:     leg.To + "_0",
				Duration: fmt.Sprintf("%.3f", float64(t.WaitTimes[i])),
			})
		}
	}

	return person
}
