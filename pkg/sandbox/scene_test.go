package sandbox

import "testing"

func TestDetectSceneName(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			"plain declaration",
			"from manim import *\n\nclass DemoScene(Scene):\n    pass\n",
			"DemoScene",
		},
		{
			"extra whitespace",
			"class   SquareToCircle (  Scene ) :\n    pass\n",
			"SquareToCircle",
		},
		{
			"first of several",
			"class First(Scene):\n    pass\n\nclass Second(Scene):\n    pass\n",
			"First",
		},
		{
			"non-scene classes ignored",
			"class Helper:\n    pass\n\nclass Real(Scene):\n    pass\n",
			"Real",
		},
		{
			"no scene subclass",
			"x = 1\nprint(x)\n",
			"MyScene",
		},
		{
			"empty source",
			"",
			"MyScene",
		},
		{
			"subclass of something else",
			"class Animated(MovingCameraScene):\n    pass\n",
			"MyScene",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectSceneName(tc.source); got != tc.want {
				t.Errorf("DetectSceneName = %q, want %q", got, tc.want)
			}
		})
	}
}
