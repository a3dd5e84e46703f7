package availability_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotel-booking/availability"

	"github.com/cucumber/godog"
)

type availabilityTestContext struct {
	capacity availability.Capacity
	bookings []availability.Booking
	result   availability.Result
	err      error
}

func (c *availabilityTestContext) reset() {
	c.capacity = availability.Capacity{}
	c.bookings = nil
	c.result = availability.Result{}
	c.err = nil
}

func (c *availabilityTestContext) aRoomWith(regular, extra, minBeds int) error {
	c.capacity = availability.Capacity{RegularBeds: regular, ExtraBeds: extra, MinBookingBeds: minBeds}
	return c.capacity.Validate()
}

func (c *availabilityTestContext) addBooking(active bool, beds int, in, out string) error {
	checkIn, err := availability.ParseDate(in)
	if err != nil {
		return err
	}
	checkOut, err := availability.ParseDate(out)
	if err != nil {
		return err
	}
	c.bookings = append(c.bookings, availability.Booking{
		RoomID:   1,
		Active:   active,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Beds:     beds,
	})
	return nil
}

func (c *availabilityTestContext) anActiveBooking(beds int, in, out string) error {
	return c.addBooking(true, beds, in, out)
}

func (c *availabilityTestContext) aCancelledBooking(beds int, in, out string) error {
	return c.addBooking(false, beds, in, out)
}

func (c *availabilityTestContext) check(beds int, in, out, confirmation string) error {
	checkIn, err := availability.ParseDate(in)
	if err != nil {
		return err
	}
	checkOut, err := availability.ParseDate(out)
	if err != nil {
		return err
	}
	c.result, c.err = availability.Check(c.capacity, c.bookings, availability.Request{
		RoomID:             1,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Beds:               beds,
		ExtraBedsConfirmed: confirmation == "with",
	})
	return nil
}

func (c *availabilityTestContext) theRoomIsAvailable() error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if !c.result.Available {
		return fmt.Errorf("expected available, got %+v", c.result)
	}
	return nil
}

func (c *availabilityTestContext) theRoomIsNotAvailable() error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if c.result.Available {
		return fmt.Errorf("expected unavailable, got %+v", c.result)
	}
	return nil
}

func (c *availabilityTestContext) extraBedsAreNeeded() error {
	if !c.result.NeedsExtraBeds {
		return errors.New("expected extra beds to be needed")
	}
	return nil
}

func (c *availabilityTestContext) regularBedsAreFree(n int) error {
	if c.result.AvailableRegularBeds != n {
		return fmt.Errorf("expected %d regular beds free, got %d", n, c.result.AvailableRegularBeds)
	}
	return nil
}

func (c *availabilityTestContext) bedsAreFreeInTotal(n int) error {
	if c.result.AvailableCount != n {
		return fmt.Errorf("expected %d beds free, got %d", n, c.result.AvailableCount)
	}
	return nil
}

func (c *availabilityTestContext) theCheckFailsWithAnInvalidDateRange() error {
	if !errors.Is(c.err, availability.ErrInvalidDateRange) {
		return fmt.Errorf("expected invalid date range, got %v", c.err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &availabilityTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a room with (\d+) regular beds, (\d+) extra beds and a minimum of (\d+) beds?$`, tc.aRoomWith)
	ctx.Step(`^an active booking for (\d+) beds from "([^"]*)" to "([^"]*)"$`, tc.anActiveBooking)
	ctx.Step(`^a cancelled booking for (\d+) beds from "([^"]*)" to "([^"]*)"$`, tc.aCancelledBooking)

	// When steps
	ctx.Step(`^I check (\d+) beds from "([^"]*)" to "([^"]*)" (with|without) extra bed confirmation$`, tc.check)

	// Then steps
	ctx.Step(`^the room is available$`, tc.theRoomIsAvailable)
	ctx.Step(`^the room is not available$`, tc.theRoomIsNotAvailable)
	ctx.Step(`^extra beds are needed$`, tc.extraBedsAreNeeded)
	ctx.Step(`^(\d+) regular beds are free$`, tc.regularBedsAreFree)
	ctx.Step(`^(\d+) beds are free in total$`, tc.bedsAreFreeInTotal)
	ctx.Step(`^the check fails with an invalid date range$`, tc.theCheckFailsWithAnInvalidDateRange)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
