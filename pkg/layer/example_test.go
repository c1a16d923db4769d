package layer_test

import (
	"fmt"

	"github.com/iamvince24/serenity-canvas/pkg/layer"
)

func ExampleToFrontInSubset() {
	order := []string{"t1", "img", "t2"}
	texts := map[string]bool{"t1": true, "t2": true}

	fmt.Println(layer.ToFrontInSubset(order, "t1", texts))
	// Output: [t2 img t1]
}

func ExampleMoveUp() {
	fmt.Println(layer.MoveUp([]string{"a", "b", "c"}, "b"))
	// Output: [a c b]
}
