package conveyor_test

import (
	"fmt"

	"github.com/TheBitDrifter/conveyor"
)

func Example_basic() {
	world := conveyor.Factory.NewWorld()

	position := conveyor.ComponentTypeIDFromName("Position")
	velocity := conveyor.ComponentTypeIDFromName("Velocity")

	entity, err := world.SpawnWithData(
		[]conveyor.ComponentTypeId{position, velocity},
		[][]byte{[]byte("x=0,y=0"), []byte("dx=1,dy=1")},
	)
	if err != nil {
		fmt.Println("spawn failed:", err)
		return
	}

	matches := world.MatchingArchetypes([]conveyor.ComponentTypeId{position})
	fmt.Println(len(matches))

	table, row := world.EntityRow(entity)
	fmt.Println(string(table.Column(position).Row(row)))

	// Output:
	// 1
	// x=0,y=0
}
