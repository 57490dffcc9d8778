package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/richinsley/goparticlefield/field"
)

// Vertex attribute locations shared with the renderer's VAO.
const (
	PositionLocation = 0
	UVLocation       = 1
	AngleLocation    = 2
)

// Uniform names used by the particle program.
const (
	ModelMatrix      = "modelMatrix"
	ViewMatrix       = "viewMatrix"
	ProjectionMatrix = "projectionMatrix"
	Resolution       = "uResolution"
	Size             = "uSize"
	Progress         = "uProgress"
	Mouse            = "uMouse"
	Time             = "uTime"
	Distortion       = "uDistortion"
	Texture          = "uTexture"
)

// ────────────────────────────────── WebGL2 / ESSL 3.00 ──────────────────────────────────

const particleVertexTemplate = `#version 300 es
precision highp float;

layout (location = %d) in vec3 position;
layout (location = %d) in vec2 uv;
layout (location = %d) in float angle;

uniform mat4 modelMatrix;
uniform mat4 viewMatrix;
uniform mat4 projectionMatrix;

uniform vec2 uResolution;
uniform float uSize;
uniform float uProgress;
uniform vec3 uMouse;
uniform float uTime;
uniform float uDistortion;

out vec2 vUv;

#define MIN_MOUSE_DISTANCE %s
#define PROGRESS_AMPLITUDE %s
#define DISTORTION_AMPLITUDE %s

void main() {
    vec3 pos = position;

    if (uDistortion == 1.0) {
        pos.x += sin(pos.y + uTime) * DISTORTION_AMPLITUDE;
        pos.y += cos(pos.x + uTime) * DISTORTION_AMPLITUDE;
    }

    // push away from the pointer, strongest right under it
    float dist = max(distance(pos, uMouse), MIN_MOUSE_DISTANCE);
    float strength = 1.0 / dist;
    vec3 dir = normalize(vec3(cos(angle) * strength, sin(angle) * strength, 1.0));
    pos += dir * strength;

    pos.z += sin(uProgress * angle) * PROGRESS_AMPLITUDE;

    vec4 viewPosition = viewMatrix * modelMatrix * vec4(pos, 1.0);
    gl_Position = projectionMatrix * viewPosition;
    gl_PointSize = uSize * uResolution.y / -viewPosition.z;

    vUv = uv;
}
`

const particleFragmentSource = `#version 300 es
precision highp float;

uniform sampler2D uTexture;

in vec2 vUv;
out vec4 fragColor;

void main() {
    if (distance(gl_PointCoord, vec2(0.5)) > 0.5) {
        discard;
    }
    fragColor = texture(uTexture, vUv);
}
`

// glslFloat formats v as a GLSL float literal.
func glslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}

// ParticleVertexShader returns the ESSL 3.00 vertex shader for the field.
func ParticleVertexShader() string {
	return fmt.Sprintf(particleVertexTemplate,
		PositionLocation, UVLocation, AngleLocation,
		glslFloat(field.MinMouseDistance),
		glslFloat(field.ProgressAmplitude),
		glslFloat(field.DistortionAmplitude),
	)
}

// ParticleFragmentShader returns the ESSL 3.00 fragment shader.
func ParticleFragmentShader() string {
	return particleFragmentSource
}

// Uniforms lists every uniform the renderer looks up.
func Uniforms() []string {
	return []string{
		ModelMatrix, ViewMatrix, ProjectionMatrix,
		Resolution, Size, Progress, Mouse, Time, Distortion, Texture,
	}
}
