package parking

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Console is an interactive shell over a running engine, useful for local
// operation without the HTTP surface.
type Console struct {
	engine  *Engine
	events  *MemoryRecorder
	scanner *bufio.Scanner
}

func NewConsole(engine *Engine, events *MemoryRecorder) *Console {
	return &Console{
		engine:  engine,
		events:  events,
		scanner: bufio.NewScanner(os.Stdin),
	}
}

// Run reads commands until EOF or an explicit exit.
func (c *Console) Run(ctx context.Context) {
	fmt.Println("Parking Tower Console")
	fmt.Println("Type 'help' for available commands")

	for {
		fmt.Print("> ")
		if !c.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmdCtx, span := tracer.Start(ctx, "console."+parts[0])
		done := c.execute(cmdCtx, parts[0], parts[1:])
		span.End()
		if done {
			return
		}
	}
}

func (c *Console) execute(ctx context.Context, command string, args []string) bool {
	switch command {
	case "status":
		c.printStatus()
	case "grid":
		c.printGrid()
	case "events":
		c.printEvents()
	case "inject":
		c.inject(ctx, args)
	case "release":
		c.release(ctx, args)
	case "maintenance":
		c.maintenance(ctx, args)
	case "find":
		c.find(args)
	case "start":
		if err := c.engine.Start(); err != nil {
			fmt.Println("Error:", err)
		} else {
			fmt.Println("Engine started")
		}
	case "stop":
		c.engine.Stop()
		fmt.Println("Engine stopped")
	case "help":
		c.printHelp()
	case "exit", "quit":
		return true
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", command)
	}
	return false
}

func (c *Console) printStatus() {
	st := c.engine.GetSystemStatus()
	fmt.Printf("State:     %s\n", st.State)
	fmt.Printf("Spaces:    %d occupied / %d total (%.1f%%)\n",
		st.OccupiedSpaces, st.TotalSpaces, st.Statistics.OccupancyRate*100)
	fmt.Printf("Queue:     %d waiting\n", st.QueueLength)
	fmt.Printf("Traffic:   %.0f in/h, %.0f out/h (peak: %v)\n",
		st.EntryRate, st.ExitRate, st.IsPeakHour)
	fmt.Printf("Entries:   %d\n", st.Statistics.TotalEntries)
	fmt.Printf("Exits:     %d\n", st.Statistics.TotalExits)
	fmt.Printf("Revenue:   %.2f\n", st.Statistics.TotalRevenue)
	fmt.Printf("Avg stay:  %.1f min\n", st.Statistics.AvgStayMinutes)
}

func (c *Console) printGrid() {
	grid := c.engine.GetParkingGrid()
	fmt.Printf("%-10s %-12s %-12s %-12s\n", "Space", "Class", "Plate", "Vehicle")
	occupied := 0
	for _, sp := range grid {
		if !sp.Occupied {
			continue
		}
		occupied++
		fmt.Printf("%-10s %-12s %-12s %-12s\n", sp.ID, sp.Class, sp.Vehicle.Plate, sp.Vehicle.Class)
	}
	fmt.Printf("%d of %d spaces occupied\n", occupied, len(grid))
}

func (c *Console) printEvents() {
	if c.events == nil {
		fmt.Println("No event recorder attached")
		return
	}
	for _, ev := range c.events.Recent(20) {
		switch ev.Type {
		case EventVehicleExit, EventPaymentFailed:
			fmt.Printf("%s  %-15s %-10s %s (%.2f)\n",
				ev.Timestamp.Format("15:04:05"), ev.Type, ev.Plate, ev.SpaceID, ev.Amount)
		default:
			fmt.Printf("%s  %-15s %-10s %s\n",
				ev.Timestamp.Format("15:04:05"), ev.Type, ev.Plate, ev.SpaceID)
		}
	}
}

func (c *Console) inject(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: inject <car|suv|truck|motorcycle> [plate]")
		return
	}
	plate := ""
	if len(args) > 1 {
		plate = args[1]
	}
	res, err := c.engine.InjectVehicle(ctx, VehicleClass(args[0]), plate)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if res.Queued {
		fmt.Printf("Vehicle %s queued, no compatible space free\n", res.Plate)
		return
	}
	fmt.Printf("Vehicle %s parked at %s\n", res.Plate, res.SpaceID)
}

func (c *Console) release(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: release <space-id>")
		return
	}
	if err := c.engine.ForceRelease(ctx, args[0]); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Space %s released\n", args[0])
}

func (c *Console) maintenance(ctx context.Context, args []string) {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		fmt.Println("Usage: maintenance <space-id> <on|off>")
		return
	}
	if err := c.engine.SetSpaceMaintenance(ctx, args[0], args[1] == "on"); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Space %s maintenance %s\n", args[0], args[1])
}

func (c *Console) find(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: find <plate>")
		return
	}
	sp, ok := c.engine.FindVehicle(args[0])
	if !ok {
		fmt.Printf("Vehicle %s not found\n", args[0])
		return
	}
	fmt.Printf("Vehicle %s is at %s (level %d, position %d)\n", args[0], sp.ID, sp.Level, sp.Position)
}

func (c *Console) printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  status                          - system summary")
	fmt.Println("  grid                            - occupied spaces")
	fmt.Println("  events                          - recent events")
	fmt.Println("  inject <class> [plate]          - admit a vehicle")
	fmt.Println("  release <space-id>              - force release a space")
	fmt.Println("  maintenance <space-id> <on|off> - toggle out of service")
	fmt.Println("  find <plate>                    - locate a parked vehicle")
	fmt.Println("  start                           - start the simulation")
	fmt.Println("  stop                            - stop the simulation")
	fmt.Println("  exit                            - leave the console")
}
