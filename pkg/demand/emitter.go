package demand

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/walkgen/walkgen/pkg/routing"
)

const (
	xmlHeader      = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	routesSchema   = "http://sumo.dlr.de/xsd/routes_file.xsd"
	pedestrianType = "ped_pedestrian"
)

type vehicleType struct {
	ID     string `xml:"id,attr"`
	VClass string `xml:"vClass,attr"`
}

type routesDocument struct {
	XMLName        xml.Name        `xml:"routes"`
	Namespace      string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:noNamespaceSchemaLocation,attr"`
	VTypes         []vehicleType   `xml:"vType"`
	Persons        []personElement `xml:"person"`
}

// StoreTrips serializes the sorted trip schedule into the routing oracle's
// person trip input format.
func StoreTrips(trips []*Trip, path string) error {
	document := routesDocument{
		Namespace:      xsiNamespace,
		SchemaLocation: routesSchema,
		VTypes:         []vehicleType{{ID: pedestrianType, VClass: "pedestrian"}},
	}

	for _, trip := range trips {
		document.Persons = append(document.Persons, trip.element())
	}

	return writeRoutesFile(document, path)
}

func writeRoutesFile(document routesDocument, path string) error {
	out, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal routes: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(xmlHeader), out...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// StoreRoutes resolves the trips file into walkable routes via the route
// repair oracle and restores the intended departure times afterwards, since
// the repair step is not precision-stable for trip timing.
func StoreRoutes(repairer *routing.Duarouter, tripsPath string, routesPath string) error {
	if err := repairer.Repair(tripsPath, routesPath); err != nil {
		return err
	}

	return ReconcileDepartures(tripsPath, routesPath)
}

type plannedTrips struct {
	Persons []struct {
		ID     string `xml:"id,attr"`
		Depart string `xml:"depart,attr"`
	} `xml:"person"`
}

type repairedPerson struct {
	XMLName  xml.Name `xml:"person"`
	ID       string   `xml:"id,attr"`
	Depart   string   `xml:"depart,attr"`
	Type     string   `xml:"type,attr,omitempty"`
	InnerXML string   `xml:",innerxml"`
}

type repairedRoutes struct {
	VTypes  []vehicleType    `xml:"vType"`
	Persons []repairedPerson `xml:"person"`
}

// ReconcileDepartures re-applies the departure times of the trips file to the
// repaired routes file and restores the global sort by start time.
func ReconcileDepartures(tripsPath string, routesPath string) error {
	tripsData, err := os.ReadFile(tripsPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", tripsPath, err)
	}

	var planned plannedTrips
	if err := xml.Unmarshal(tripsData, &planned); err != nil {
		return fmt.Errorf("parse %s: %w", tripsPath, err)
	}

	departs := make(map[string]int, len(planned.Persons))
	for _, person := range planned.Persons {
		depart, err := strconv.Atoi(person.Depart)
		if err != nil {
			return fmt.Errorf("trip %s has malformed depart %q", person.ID, person.Depart)
		}
		departs[person.ID] = depart
	}

	routesData, err := os.ReadFile(routesPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", routesPath, err)
	}

	var repaired repairedRoutes
	if err := xml.Unmarshal(routesData, &repaired); err != nil {
		return fmt.Errorf("parse %s: %w", routesPath, err)
	}

	for i, person := range repaired.Persons {
		depart, ok := departs[person.ID]
		if !ok {
			return fmt.Errorf("repaired person %s missing from trips file", person.ID)
		}
		repaired.Persons[i].Depart = fmt.Sprintf("%.2f", float64(depart))
	}

	sort.SliceStable(repaired.Persons, func(i, j int) bool {
		return departs[repaired.Persons[i].ID] < departs[repaired.Persons[j].ID]
	})

	document := struct {
		XMLName        xml.Name         `xml:"routes"`
		Namespace      string           `xml:"xmlns:xsi,attr"`
		SchemaLocation string           `xml:"xsi:noNamespaceSchemaLocation,attr"`
		VTypes         []vehicleType    `xml:"vType"`
		Persons        []repairedPerson `xml:"person"`
	}{
		Namespace:      xsiNamespace,
		SchemaLocation: routesSchema,
		VTypes:         repaired.VTypes,
		Persons:        repaired.Persons,
	}

	out, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal routes: %w", err)
	}
	if err := os.WriteFile(routesPath, append([]byte(xmlHeader), out...), 0644); err != nil {
		return fmt.Errorf("write %s: %w", routesPath, err)
	}

	log.Info().Int("persons", len(repaired.Persons)).Str("routes", routesPath).Msg("Reconciled departure times")
	return nil
}
