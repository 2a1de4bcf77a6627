package services

import (
	"time"

	"payments-backend/models"
)

// PaymentGateway is the external processor collaborator. The simulated
// implementation stands in for a real acquirer call so one can be
// substituted without touching the charge lifecycle.
type PaymentGateway interface {
	Charge(req *models.ChargeRequest) error
}

// SimulatedGateway sleeps for a fixed delay and approves everything.
// The sleep deliberately has no cancellation semantics: a caller
// disconnect must not abort an in-flight create.
type SimulatedGateway struct {
	Delay time.Duration
}

func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay}
}

func (g *SimulatedGateway) Charge(_ *models.ChargeRequest) error {
	time.Sleep(g.Delay)
	return nil
}
