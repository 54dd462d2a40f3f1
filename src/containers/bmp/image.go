package bmp

func Test(data []byte) bool {
	if len(data) < 14 {
		return false
	}

	// BMP Magic Numbers
	// https://www.garykessler.net/library/file_sigs.html
	return data[0] == 'B' && data[1] == 'M'
}
