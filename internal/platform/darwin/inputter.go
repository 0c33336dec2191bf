//go:build darwin && cgo

package darwin

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework Foundation -framework Carbon
#include <CoreGraphics/CoreGraphics.h>
#include <Carbon/Carbon.h>

static void button_events(int button, CGMouseButton *cgButton, CGEventType *downType, CGEventType *upType) {
    switch (button) {
        case 1:  // right
            *cgButton = kCGMouseButtonRight;
            *downType = kCGEventRightMouseDown;
            *upType = kCGEventRightMouseUp;
            break;
        case 2:  // middle
            *cgButton = kCGMouseButtonCenter;
            *downType = kCGEventOtherMouseDown;
            *upType = kCGEventOtherMouseUp;
            break;
        default:  // left (0)
            *cgButton = kCGMouseButtonLeft;
            *downType = kCGEventLeftMouseDown;
            *upType = kCGEventLeftMouseUp;
            break;
    }
}

// Post a single press (down=1) or release (down=0) at screen coordinates.
static int cg_mouse_button(float x, float y, int button, int down) {
    CGMouseButton cgButton;
    CGEventType downType, upType;
    button_events(button, &cgButton, &downType, &upType);

    CGEventRef ev = CGEventCreateMouseEvent(NULL, down ? downType : upType, CGPointMake(x, y), cgButton);
    if (!ev) return -1;
    CGEventPost(kCGHIDEventTap, ev);
    CFRelease(ev);
    return 0;
}

// Click with the given button and click count (1=single, 2=double, 3=triple).
static int cg_click(float x, float y, int button, int count) {
    CGPoint point = CGPointMake(x, y);
    CGMouseButton cgButton;
    CGEventType downType, upType;
    button_events(button, &cgButton, &downType, &upType);

    for (int i = 0; i < count; i++) {
        CGEventRef down = CGEventCreateMouseEvent(NULL, downType, point, cgButton);
        CGEventRef up = CGEventCreateMouseEvent(NULL, upType, point, cgButton);
        if (!down || !up) {
            if (down) CFRelease(down);
            if (up) CFRelease(up);
            return -1;
        }
        CGEventSetIntegerValueField(down, kCGMouseEventClickState, i + 1);
        CGEventSetIntegerValueField(up, kCGMouseEventClickState, i + 1);
        CGEventPost(kCGHIDEventTap, down);
        CGEventPost(kCGHIDEventTap, up);
        CFRelease(down);
        CFRelease(up);
    }
    return 0;
}

static int cg_move_mouse(float x, float y) {
    CGEventRef move = CGEventCreateMouseEvent(NULL, kCGEventMouseMoved, CGPointMake(x, y), kCGMouseButtonLeft);
    if (!move) return -1;
    CGEventPost(kCGHIDEventTap, move);
    CFRelease(move);
    return 0;
}

// Type a single Unicode character using CGEvent key simulation.
static void cg_type_char(UniChar ch) {
    CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, 0, false);
    CGEventKeyboardSetUnicodeString(keyDown, 1, &ch);
    CGEventKeyboardSetUnicodeString(keyUp, 1, &ch);
    CGEventPost(kCGHIDEventTap, keyDown);
    CGEventPost(kCGHIDEventTap, keyUp);
    CFRelease(keyDown);
    CFRelease(keyUp);
}

// Press a key with modifiers held.
static void cg_key_combo(CGKeyCode keyCode, CGEventFlags modifiers) {
    CGEventRef keyDown = CGEventCreateKeyboardEvent(NULL, keyCode, true);
    CGEventRef keyUp = CGEventCreateKeyboardEvent(NULL, keyCode, false);
    CGEventSetFlags(keyDown, modifiers);
    CGEventSetFlags(keyUp, modifiers);
    CGEventPost(kCGHIDEventTap, keyDown);
    CGEventPost(kCGHIDEventTap, keyUp);
    CFRelease(keyDown);
    CFRelease(keyUp);
}
*/
import "C"

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// DarwinInputter implements the platform.Inputter interface for macOS.
type DarwinInputter struct{}

// NewInputter creates a new macOS inputter.
func NewInputter() *DarwinInputter {
	return &DarwinInputter{}
}

func cButton(button platform.MouseButton) C.int {
	switch button {
	case platform.MouseRight:
		return 1
	case platform.MouseMiddle:
		return 2
	}
	return 0
}

func (inp *DarwinInputter) MoveMouse(x, y int) error {
	if C.cg_move_mouse(C.float(x), C.float(y)) != 0 {
		return fmt.Errorf("failed to move mouse to (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) MouseDown(x, y int, button platform.MouseButton) error {
	if C.cg_mouse_button(C.float(x), C.float(y), cButton(button), 1) != 0 {
		return fmt.Errorf("failed to press mouse at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) MouseUp(x, y int, button platform.MouseButton) error {
	if C.cg_mouse_button(C.float(x), C.float(y), cButton(button), 0) != 0 {
		return fmt.Errorf("failed to release mouse at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	if C.cg_click(C.float(x), C.float(y), cButton(button), C.int(count)) != 0 {
		return fmt.Errorf("failed to click at (%d, %d)", x, y)
	}
	return nil
}

func (inp *DarwinInputter) TypeText(ctx context.Context, text string, delayMs int) error {
	for _, ch := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		C.cg_type_char(C.UniChar(ch))
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}
	return nil
}

func (inp *DarwinInputter) KeyCombo(keys []string) error {
	keyCode, modifiers, err := parseKeyCombo(keys)
	if err != nil {
		return err
	}
	C.cg_key_combo(C.CGKeyCode(keyCode), C.CGEventFlags(modifiers))
	return nil
}

var modifierMap = map[string]uint64{
	"cmd": uint64(C.kCGEventFlagMaskCommand), "super": uint64(C.kCGEventFlagMaskCommand),
	"shift": uint64(C.kCGEventFlagMaskShift),
	"ctrl":  uint64(C.kCGEventFlagMaskControl),
	"alt":   uint64(C.kCGEventFlagMaskAlternate),
}

func parseKeyCombo(keys []string) (C.CGKeyCode, C.CGEventFlags, error) {
	var modifiers uint64
	var keyCode uint16
	found := false

	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if mod, ok := modifierMap[k]; ok {
			modifiers |= mod
		} else if code, ok := keyCodeMap[k]; ok {
			keyCode = code
			found = true
		} else {
			return 0, 0, fmt.Errorf("unknown key: %q", k)
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("no key specified in combo, only modifiers")
	}
	return C.CGKeyCode(keyCode), C.CGEventFlags(modifiers), nil
}
