package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/goparticlefield/field"
	"github.com/richinsley/goparticlefield/geometry"
	"github.com/richinsley/goparticlefield/shader"
	xlate "github.com/richinsley/goparticlefield/translator"
)

// RenderPass draws the point cloud with the particle program.
type RenderPass struct {
	ShaderProgram uint32
	vao           uint32
	vbos          [3]uint32
	count         int32

	modelLoc      int32
	viewLoc       int32
	projectionLoc int32
	resolutionLoc int32
	sizeLoc       int32
	progressLoc   int32
	mouseLoc      int32
	timeLoc       int32
	distortionLoc int32
	textureLoc    int32
}

// newRenderPass translates and links the particle shaders and uploads the
// geometry.
func newRenderPass(pts *geometry.Points) (*RenderPass, error) {
	translator, err := xlate.GetTranslator()
	if err != nil {
		return nil, err
	}

	vsShader, err := translator.TranslateShader(shader.ParticleVertexShader(), "vertex", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("vertex shader translation failed: %w", err)
	}
	fsShader, err := translator.TranslateShader(shader.ParticleFragmentShader(), "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	retv := &RenderPass{count: int32(pts.Count())}
	retv.ShaderProgram, err = newProgram(vsShader.Code, fsShader.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	// Uniforms may live in either stage.
	uniformMap := make(map[string]gst.ShaderVariable, len(vsShader.Variables)+len(fsShader.Variables))
	for k, v := range vsShader.Variables {
		uniformMap[k] = v
	}
	for k, v := range fsShader.Variables {
		uniformMap[k] = v
	}

	gl.UseProgram(retv.ShaderProgram)
	retv.modelLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.ModelMatrix)
	retv.viewLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.ViewMatrix)
	retv.projectionLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.ProjectionMatrix)
	retv.resolutionLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Resolution)
	retv.sizeLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Size)
	retv.progressLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Progress)
	retv.mouseLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Mouse)
	retv.timeLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Time)
	retv.distortionLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Distortion)
	retv.textureLoc = getUniformLocation(uniformMap, retv.ShaderProgram, shader.Texture)
	gl.UseProgram(0)

	retv.uploadGeometry(pts)
	return retv, nil
}

// getUniformLocation resolves a uniform through the translator's name
// mapping, falling back to the source name.
func getUniformLocation(uniformMap map[string]gst.ShaderVariable, program uint32, name string) int32 {
	if v, ok := uniformMap[name]; ok {
		return gl.GetUniformLocation(program, gl.Str(v.MappedName+"\x00"))
	}
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (p *RenderPass) uploadGeometry(pts *geometry.Points) {
	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(int32(len(p.vbos)), &p.vbos[0])

	attribs := []struct {
		location uint32
		size     int32
		data     []float32
	}{
		{shader.PositionLocation, 3, pts.Positions()},
		{shader.UVLocation, 2, pts.UVs()},
		{shader.AngleLocation, 1, pts.Angles()},
	}
	for i, a := range attribs {
		gl.BindBuffer(gl.ARRAY_BUFFER, p.vbos[i])
		gl.BufferData(gl.ARRAY_BUFFER, len(a.data)*4, gl.Ptr(a.data), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(a.location)
		gl.VertexAttribPointerWithOffset(a.location, a.size, gl.FLOAT, false, 0, 0)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Draw uploads the uniforms and draws the points. It expects depth writes
// to be disabled and program point size to be enabled.
func (p *RenderPass) Draw(u *field.Uniforms, view, projection mgl32.Mat4) {
	gl.UseProgram(p.ShaderProgram)

	model := mgl32.Ident4()
	if p.modelLoc != -1 {
		gl.UniformMatrix4fv(p.modelLoc, 1, false, &model[0])
	}
	if p.viewLoc != -1 {
		gl.UniformMatrix4fv(p.viewLoc, 1, false, &view[0])
	}
	if p.projectionLoc != -1 {
		gl.UniformMatrix4fv(p.projectionLoc, 1, false, &projection[0])
	}
	if p.resolutionLoc != -1 {
		gl.Uniform2f(p.resolutionLoc, u.Resolution.X(), u.Resolution.Y())
	}
	if p.sizeLoc != -1 {
		gl.Uniform1f(p.sizeLoc, u.Size)
	}
	if p.progressLoc != -1 {
		gl.Uniform1f(p.progressLoc, u.Progress)
	}
	if p.mouseLoc != -1 {
		gl.Uniform3f(p.mouseLoc, u.Mouse.X(), u.Mouse.Y(), u.Mouse.Z())
	}
	if p.timeLoc != -1 {
		gl.Uniform1f(p.timeLoc, u.Time)
	}
	if p.distortionLoc != -1 {
		gl.Uniform1f(p.distortionLoc, u.Distortion)
	}

	// A missing texture leaves unit 0 unbound, which samples as black.
	var textureID uint32
	if u.Texture != nil {
		textureID = u.Texture.GetTextureID()
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	if p.textureLoc != -1 {
		gl.Uniform1i(p.textureLoc, 0)
	}

	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.POINTS, 0, p.count)
	gl.BindVertexArray(0)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

// Destroy frees the program and buffers.
func (p *RenderPass) Destroy() {
	gl.DeleteProgram(p.ShaderProgram)
	gl.DeleteBuffers(int32(len(p.vbos)), &p.vbos[0])
	gl.DeleteVertexArrays(1, &p.vao)
}
