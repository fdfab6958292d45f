package selector

import "fmt"

type node interface {
	eval(axes Axes) (bool, error)
}

type axisNode struct {
	name string
}

func (n *axisNode) eval(axes Axes) (bool, error) {
	if v, ok := axes.Bool(n.name); ok {
		return v, nil
	}
	if v, ok := axes.Int(n.name); ok {
		return v != 0, nil
	}
	return false, &UnknownSelectorError{Name: n.name}
}

type cmpNode struct {
	axis  string
	op    string
	value int
}

func (n *cmpNode) eval(axes Axes) (bool, error) {
	v, ok := axes.Int(n.axis)
	if !ok {
		if _, known := axes.Bool(n.axis); known {
			return false, &UnknownSelectorError{Name: n.axis, Reason: "is not numeric"}
		}
		return false, &UnknownSelectorError{Name: n.axis}
	}
	switch n.op {
	case "==":
		return v == n.value, nil
	case "!=":
		return v != n.value, nil
	case "<":
		return v < n.value, nil
	case "<=":
		return v <= n.value, nil
	case ">":
		return v > n.value, nil
	case ">=":
		return v >= n.value, nil
	}
	return false, fmt.Errorf("unsupported operator %q", n.op)
}

type notNode struct {
	inner node
}

func (n *notNode) eval(axes Axes) (bool, error) {
	v, err := n.inner.eval(axes)
	if err != nil {
		return false, err
	}
	return !v, nil
}

type andNode struct {
	left, right node
}

func (n *andNode) eval(axes Axes) (bool, error) {
	l, err := n.left.eval(axes)
	if err != nil {
		return false, err
	}
	if !l {
		return false, nil
	}
	return n.right.eval(axes)
}

type orNode struct {
	left, right node
}

func (n *orNode) eval(axes Axes) (bool, error) {
	l, err := n.left.eval(axes)
	if err != nil {
		return false, err
	}
	if l {
		return true, nil
	}
	return n.right.eval(axes)
}
