// polysplit：离线切分 GeoJSON 文件的命令行工具
package main

func main() {
	Execute()
}
