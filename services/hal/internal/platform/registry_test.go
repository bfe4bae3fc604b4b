package platform

import (
	"testing"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
)

func TestClaimPinExclusivity(t *testing.T) {
	r := New()

	h, err := r.ClaimPin("devA", 5, core.FuncGPIOOut)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if h.AsGPIO() == nil {
		t.Fatal("GPIO accessor nil for FuncGPIOOut claim")
	}

	if _, err := r.ClaimPin("devB", 5, core.FuncGPIOOut); err != errcode.PinInUse {
		t.Fatalf("second claim err = %v, want PinInUse", err)
	}

	// Same owner, same function: idempotent.
	if _, err := r.ClaimPin("devA", 5, core.FuncGPIOOut); err != nil {
		t.Fatalf("re-claim by owner: %v", err)
	}

	r.ReleasePin("devA", 5)
	if _, err := r.ClaimPin("devB", 5, core.FuncPWM); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestReleaseByNonOwnerIsIgnored(t *testing.T) {
	r := New()
	if _, err := r.ClaimPin("devA", 3, core.FuncGPIOIRQ); err != nil {
		t.Fatalf("claim: %v", err)
	}
	r.ReleasePin("devB", 3)
	if _, err := r.ClaimPin("devB", 3, core.FuncGPIOIRQ); err != errcode.PinInUse {
		t.Fatalf("err = %v, want PinInUse", err)
	}
}

func TestUnknownPinRejected(t *testing.T) {
	r := New()
	if _, err := r.ClaimPin("dev", 29, core.FuncGPIOIn); err != errcode.UnknownPin {
		t.Fatalf("pin 29 err = %v, want UnknownPin", err)
	}
	if _, err := r.ClaimPin("dev", -1, core.FuncPWM); err != errcode.UnknownPin {
		t.Fatalf("pin -1 err = %v, want UnknownPin", err)
	}
}

func TestHandleNarrowing(t *testing.T) {
	r := New()

	irq, _ := r.ClaimPin("d", 1, core.FuncGPIOIRQ)
	if irq.AsIRQ() == nil || irq.AsGPIO() == nil || irq.AsPWM() != nil {
		t.Fatal("IRQ claim narrowing wrong")
	}

	out, _ := r.ClaimPin("d", 2, core.FuncGPIOOut)
	if out.AsGPIO() == nil || out.AsIRQ() != nil || out.AsPWM() != nil {
		t.Fatal("output claim narrowing wrong")
	}

	pwm, _ := r.ClaimPin("d", 3, core.FuncPWM)
	if pwm.AsPWM() == nil || pwm.AsGPIO() != nil || pwm.AsIRQ() != nil {
		t.Fatal("PWM claim narrowing wrong")
	}
}

func TestDisplaySingleSlot(t *testing.T) {
	r := New()

	d1, err := r.ClaimDisplay("devA")
	if err != nil || d1 == nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := r.ClaimDisplay("devB"); err != errcode.DisplayInUse {
		t.Fatalf("err = %v, want DisplayInUse", err)
	}
	r.ReleaseDisplay("devA")
	if _, err := r.ClaimDisplay("devB"); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestFakePinDriveFiresOnMatchingEdge(t *testing.T) {
	r := New()
	h, _ := r.ClaimPin("d", 10, core.FuncGPIOIRQ)
	pin := h.AsIRQ()

	if err := pin.ConfigureInput(core.PullUp); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !pin.Get() {
		t.Fatal("pull-up input should idle high")
	}

	var fired int
	if err := pin.SetIRQ(core.EdgeFalling, func() { fired++ }); err != nil {
		t.Fatalf("SetIRQ: %v", err)
	}

	fp := r.FakePin(10)
	fp.Drive(false) // falling: fires
	fp.Drive(false) // no transition: ignored
	fp.Drive(true)  // rising: armed edge doesn't match
	fp.Drive(false) // falling again

	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}

	if err := pin.ClearIRQ(); err != nil {
		t.Fatalf("ClearIRQ: %v", err)
	}
	fp.Drive(true)
	fp.Drive(false)
	if fired != 2 {
		t.Fatalf("fired after clear = %d, want 2", fired)
	}
}

func TestFakePWMRecordsLevels(t *testing.T) {
	r := New()
	h, _ := r.ClaimPin("d", 6, core.FuncPWM)
	pwm := h.AsPWM()

	if err := pwm.Configure(25_000, 1000); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if pwm.Top() != 1000 {
		t.Fatalf("top = %d", pwm.Top())
	}
	pwm.Set(0)
	pwm.Set(1000)
	pwm.Set(500)

	fp := r.FakePWM(6)
	if got := fp.Levels(); len(got) != 3 || got[2] != 500 {
		t.Fatalf("levels = %v", got)
	}
	if fp.FreqHz() != 25_000 {
		t.Fatalf("freq = %d", fp.FreqHz())
	}
	if fp.Last() != 500 {
		t.Fatalf("last = %d", fp.Last())
	}
}
