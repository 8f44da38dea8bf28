package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the numeric status id used by the shop API.
type Status int

const (
	StatusCart      Status = 1
	StatusReserved  Status = 2
	StatusPrepared  Status = 3
	StatusOnTheWay  Status = 4
	StatusDelivered Status = 5
)

var statusLabels = map[Status]string{
	StatusCart:      "Carrito",
	StatusReserved:  "Apartado",
	StatusPrepared:  "Elaborado",
	StatusOnTheWay:  "En Camino",
	StatusDelivered: "Entregado",
}

// aliases accepted when parsing labels coming from the API or from users
var statusAliases = map[string]Status{
	"carrito":   StatusCart,
	"apartado":  StatusReserved,
	"reservado": StatusReserved,
	"pending":   StatusReserved,
	"elaborado": StatusPrepared,
	"en camino": StatusOnTheWay,
	"en-camino": StatusOnTheWay,
	"entregado": StatusDelivered,
}

func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ID returns the wire id sent as status_id.
func (s Status) ID() int {
	return int(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// StatusFromID maps a status_id to a Status.
func StatusFromID(id int) (Status, error) {
	s := Status(id)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown status id %d", id)
	}
	return s, nil
}

// ParseStatus accepts a label ("En Camino"), an alias ("pending") or a numeric id ("4").
func ParseStatus(v string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(v))
	if s, ok := statusAliases[key]; ok {
		return s, nil
	}
	if id, err := strconv.Atoi(key); err == nil {
		return StatusFromID(id)
	}
	return 0, fmt.Errorf("unknown status %q", v)
}

// StatusLog represents a log entry for an applied status change
type StatusLog struct {
	ID         int
	OrderID    int
	FromStatus Status
	ToStatus   Status
	Role       Role
	ChangedBy  string
	ChangedAt  time.Time
}
