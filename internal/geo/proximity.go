package geo

// Coordinate 经纬度坐标
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid 粗校验坐标范围
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// ProximityResult 一次近邻检查的结果
type ProximityResult struct {
	DistanceMeters float64
	InRange        bool
}

// CheckProximity 判断采样点是否落在健身房半径内，半径边界为闭区间
func CheckProximity(sample, gym Coordinate, radiusMeters float64) ProximityResult {
	d := DistanceMeters(sample.Latitude, sample.Longitude, gym.Latitude, gym.Longitude)
	return ProximityResult{
		DistanceMeters: d,
		InRange:        d <= radiusMeters,
	}
}
