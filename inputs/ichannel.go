package inputs

// IChannel is a texture source bound to the points' sampler.
type IChannel interface {
	// Update is called once per frame on the render thread.
	Update()

	// GetTextureID returns the OpenGL texture ID that should be bound.
	GetTextureID() uint32

	// ChannelRes returns the texture size in pixels.
	ChannelRes() [2]int

	// Destroy releases any resources held by the channel.
	Destroy()
}

// Follower is told when a video starts or stops so it can stay in step,
// like a soundtrack playing alongside the frames.
type Follower interface {
	Play() error
	Pause() error
}
